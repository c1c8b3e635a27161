package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is loaded from the environment at startup.
// Required fields fail fast; the server never runs half-configured.
type Config struct {
	Host string `env:"HOST,required=true"`
	Port int    `env:"PORT,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	UploadDir      string `env:"UPLOAD_DIR,required=true"`

	LogLevel string `env:"LOG_LEVEL,required=true"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`

	// Live delivery tuning.
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`

	// Pagination guardrail: requested page sizes are clamped to this.
	MaxPageSize int `env:"MAX_PAGE_SIZE,required=true"`

	// Content filter. The word list file may be absent, in which case
	// moderation is disabled.
	CensoredFilepath string `env:"CENSORED_FILEPATH"`
	CensoredChar     string `env:"CENSORED_CHAR"`

	// Optional user display-field table for reference expansion.
	ProfilesFilepath string `env:"PROFILES_FILEPATH"`

	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`
}

// MaskRune parses the configured mask character, defaulting to '*'.
func MaskRune(str string) (rune, error) {
	if str == "" {
		return '*', nil
	}
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("CENSORED_CHAR must be a single character, got %q", str)
	}
	return r[0], nil
}

// ParseLogLevel maps the configured level string to slog, defaulting to Info
// rather than failing: a typo in LOG_LEVEL should not keep the server down.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
