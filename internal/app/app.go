package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"aix-chat/backend/internal/api"
	"aix-chat/backend/internal/config"
	"aix-chat/backend/internal/database"
	"aix-chat/backend/internal/extract"
	"aix-chat/backend/internal/llm"
	"aix-chat/backend/internal/repository"
	"aix-chat/backend/internal/service"
	"aix-chat/backend/internal/store"
)

// App holds the wired application: storage, conversation store, services and
// the HTTP server, so tests can assemble everything without starting it.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Redis  *redis.Client
	Store  *store.Store
	Server *http.Server
}

// NewApp builds the full dependency graph from the configuration. It opens
// the chosen storage backend and loads persisted chats, but does not start
// listening.
func NewApp(cfg *config.Config) (*App, error) {
	var (
		gateway repository.Gateway
		db      *sql.DB
		rdb     *redis.Client
		err     error
	)

	switch strings.ToLower(cfg.StorageBackend) {
	case "redis":
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		gateway = repository.NewRedisGateway(rdb)
		slog.Info("Using Redis storage backend", "addr", cfg.RedisAddr)
	case "sqlite":
		db, err = database.InitDB(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("could not initialize database: %w", err)
		}
		gateway = repository.NewSQLiteGateway(db)
		slog.Info("Using SQLite storage backend", "path", cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	st := store.New(gateway, store.WithStorageKey(cfg.StorageKey))
	st.Load(context.Background())
	slog.Info("Loaded persisted chats", "count", len(st.Chats()))

	// When no external endpoint is configured, the reply client talks to
	// the relay this same process hosts.
	endpoint := cfg.ChatEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("http://localhost:%d/api/chat", cfg.AppPort)
	}
	replyClient := llm.NewReplyClient(endpoint)
	chatService := service.NewChatService(st, replyClient)

	streamer := llm.NewOpenAIStreamer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.SystemPrompt)
	relayHandler := api.NewRelayHandler(streamer, cfg.OpenAIAPIKey != "")
	chatHandler := api.NewChatHandler(chatService, extract.NewDefault())
	router := api.NewRouter(chatHandler, relayHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Store:  st,
		Server: server,
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Error("Failed to close Redis connection", "error", err)
		}
	}
}

// Run loads the configuration, wires the application and serves HTTP until
// SIGINT or SIGTERM. The return value is the process exit code.
func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	application, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		return 1
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", application.Server.Addr)
		serveErr <- application.Server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, draining connections.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
			return 1
		}
	}

	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
