// Command client is a terminal chat client for development. It connects
// to the websocket endpoint, folds pushed events into a local timeline,
// and prints incoming messages as they arrive.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"tutor-chat/domain/event"
	"tutor-chat/internal"
	"tutor-chat/projection"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress  string `env:"CHAT_SERVER_ADDR,default=localhost:8080"`
	Token          string `env:"CHAT_TOKEN,required=true"`
	UserID         string `env:"CHAT_USER_ID,required=true"`
	ConversationID string `env:"CHAT_CONVERSATION_ID,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: internal.ParseLogLevel(config.LogLevel),
	}))

	endpoint := url.URL{
		Scheme:   "ws",
		Host:     config.ServerAddress,
		Path:     "/ws",
		RawQuery: url.Values{"token": {config.Token}}.Encode(),
	}

	conn, _, err := websocket.DefaultDialer.Dial(endpoint.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("websocket dial failed: %w", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	color.Green.Printf("Connected to %s as %s, conversation %s\n",
		config.ServerAddress, config.UserID, config.ConversationID)

	timeline := projection.NewTimeline(config.UserID, config.ConversationID)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		}

		evt, err := decode(payload)
		if err != nil {
			logger.Warn("skipping unreadable frame", "error", err)
			continue
		}

		timeline.Consume(evt)
		render(evt, timeline)
	}
}

// decode maps a wire envelope back to its event type by name.
func decode(payload []byte) (event.DomainEvent, error) {
	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, err
	}

	switch envelope.Event {
	case event.NewMessage{}.Name():
		var evt event.NewMessage
		return evt, json.Unmarshal(envelope.Data, &evt)
	case event.MessageRead{}.Name():
		var evt event.MessageRead
		return evt, json.Unmarshal(envelope.Data, &evt)
	default:
		return nil, fmt.Errorf("unknown event %q", envelope.Event)
	}
}

func render(evt event.DomainEvent, timeline *projection.Timeline) {
	switch e := evt.(type) {
	case event.NewMessage:
		msg := e.Message
		color.Cyan.Printf("[%s] %s: ", msg.CreatedAt.Format("15:04:05"), msg.Sender.ID())
		fmt.Println(msg.Content)
		if unread := timeline.Unread(); unread > 0 {
			color.Yellow.Printf("%d unread\n", unread)
		}
	case event.MessageRead:
		color.Gray.Printf("read by %s at %s\n", e.ReaderID, e.ReadAt.Format("15:04:05"))
	}
}
