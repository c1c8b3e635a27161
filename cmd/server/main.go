package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"tutor-chat/auth"
	"tutor-chat/contract"
	api "tutor-chat/infrastructure/http"
	"tutor-chat/internal"
	"tutor-chat/moderation"
	"tutor-chat/observability"
	"tutor-chat/profile"
	"tutor-chat/repositories"
	"tutor-chat/runtime"
	"tutor-chat/runtime/workers"
	"tutor-chat/services"
	"tutor-chat/storage"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// main is a thin wrapper; run owns the lifecycle so deferred
	// cleanups execute before the process exits.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: internal.ParseLogLevel(config.LogLevel),
	}))

	// 2. Databases: Badger for state, Bluge for search
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer db.Close()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("search index opening failed: %w", err)
	}
	defer blugeWriter.Close()

	// 3. Optional collaborators: content filter, profile table
	filter, err := buildFilter(config)
	if err != nil {
		return exitConfig, err
	}

	var profiles contract.ProfileResolver = profile.NewStatic(nil)
	if config.ProfilesFilepath != "" {
		loaded, err := profile.LoadFile(config.ProfilesFilepath)
		if err != nil {
			return exitConfig, fmt.Errorf("profiles file: %w", err)
		}
		profiles = loaded
	}

	// 4. Chat core
	registry := runtime.NewRegistry()
	defer registry.Clear()

	monitor := observability.NewMonitor(registry)
	dispatcher := runtime.NewDispatcher(logger, registry, monitor, config.SinkTimeout)

	service := services.NewChatService(
		logger,
		repositories.NewConversationRepository(db, logger),
		repositories.NewMessageRepository(db, logger),
		repositories.NewMessageIndex(blugeWriter, logger),
		filter,
		dispatcher,
		registry,
		profiles,
		monitor,
	)

	// 5. HTTP surface
	uploads, err := storage.NewDisk(config.UploadDir, "/uploads")
	if err != nil {
		return exitConfig, err
	}

	tokens := auth.NewTokens(config.JWTSecret, config.AuthTokenDuration)
	handler := api.NewHandler(logger, service, uploads, config.MaxPageSize)
	router := api.NewRouter(handler, tokens, config.ConnectionBufferSize)
	router.Static("/uploads", config.UploadDir)

	// 6. Background workers under supervision
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(workers.NewHeartbeat(logger, monitor, config.HeartbeatInterval))
	go supervisor.Run(ctx)
	defer supervisor.Stop()

	// 7. Serve until interrupted
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return exitRuntime, err
	}
	return exitOK, nil
}

func buildFilter(config internal.Config) (*moderation.Filter, error) {
	if config.CensoredFilepath == "" {
		return nil, nil
	}

	file, err := os.Open(config.CensoredFilepath)
	if err != nil {
		return nil, fmt.Errorf("censored words file: %w", err)
	}
	defer file.Close()

	words, err := moderation.ReadWords(file)
	if err != nil {
		return nil, err
	}
	maskRune, err := internal.MaskRune(config.CensoredChar)
	if err != nil {
		return nil, err
	}
	return moderation.NewFilter(words, maskRune)
}
