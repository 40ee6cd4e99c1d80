package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tgpublisher/internal/bot"
	"tgpublisher/internal/caption"
	"tgpublisher/internal/config"
	"tgpublisher/internal/models"
	"tgpublisher/internal/storage"
	"tgpublisher/internal/storage/ch"
	"tgpublisher/internal/storage/sqlite"
	"tgpublisher/internal/storage/stubs"
)

// App represents the application
type App struct {
	config *config.Config
	logger *zap.Logger
	db     storage.Storage
	bot    *bot.Bot
	server *http.Server

	// ctx outlives single webhook requests; cancelled on shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if envErr != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{config: cfg, logger: logger, ctx: ctx, cancel: cancel}

	logger.Info("Starting channel publisher bot...",
		zap.String("storage", cfg.StorageBackend),
		zap.Bool("webhook", cfg.WebhookMode),
	)

	if err := app.initDatabase(ctx); err != nil {
		cancel()
		return nil, err
	}

	if err := app.initBot(); err != nil {
		cancel()
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

// NewLogger builds a zap logger. format is "json" or "console".
func NewLogger(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json", "":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}

// openStorage creates the configured backend
func openStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Info("Using in-memory storage")
		return stubs.NewMockDB(), nil
	case config.BackendClickHouse:
		logger.Info("Connecting to ClickHouse",
			zap.String("host", cfg.ClickHouseHost),
			zap.Int("port", cfg.ClickHousePort),
			zap.String("database", cfg.ClickHouseDatabase),
			zap.String("user", cfg.ClickHouseUser),
			zap.Bool("tls", cfg.ClickHouseUseTLS),
		)
		db, err := ch.NewClickHouseDB(
			cfg.ClickHouseHost,
			cfg.ClickHousePort,
			cfg.ClickHouseDatabase,
			cfg.ClickHouseUser,
			cfg.ClickHousePassword,
			cfg.ClickHouseUseTLS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		return db, nil
	default:
		logger.Info("Opening SQLite database", zap.String("path", cfg.DatabaseFile))
		db, err := sqlite.NewSQLiteDB(cfg.DatabaseFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		return db, nil
	}
}

// initDatabase opens the storage, applies the schema and seeds the super admins
func (a *App) initDatabase(ctx context.Context) error {
	db, err := openStorage(a.config, a.logger)
	if err != nil {
		return err
	}

	if err := db.Initialize(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := seedSuperAdmins(ctx, db, a.config.SuperAdminIDs); err != nil {
		_ = db.Close()
		return err
	}
	a.logger.Info("Database initialized successfully")

	a.db = db
	return nil
}

func seedSuperAdmins(ctx context.Context, db storage.Storage, ids []int64) error {
	for _, id := range ids {
		if err := db.AddAdmin(ctx, models.Admin{UserID: id, Role: models.RoleSuper}); err != nil {
			return fmt.Errorf("failed to register super admin %d: %w", id, err)
		}
	}
	return nil
}

// initBot initializes the Telegram bot
func (a *App) initBot() error {
	links := caption.DefaultLinks()
	if a.config.CaptionChannel != "" {
		links.Channel = a.config.CaptionChannel
	}
	if a.config.CaptionChat != "" {
		links.Chat = a.config.CaptionChat
	}

	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.db, bot.Options{
		SuperAdminIDs: a.config.SuperAdminIDs,
		Links:         links,
		MaxFileSizeMB: a.config.MaxFileSizeMB,
	}, a.logger.Named("bot"))
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	a.logger.Info("Bot created successfully", zap.Int64s("super_admins", a.config.SuperAdminIDs))

	a.bot = telegramBot
	return nil
}

// initHTTPServer initializes the HTTP server for health checks and webhook
func (a *App) initHTTPServer() {
	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      newRouter(a.ctx, a.bot, a.config.WebhookMode, a.logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.config.WebhookMode {
		a.logger.Info("Starting bot in WEBHOOK mode", zap.String("webhook_url", a.config.WebhookURL))
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
		a.logger.Info("Webhook configured. Bot will receive updates via HTTP endpoint /telegram-webhook")
	} else {
		go func() {
			if err := a.bot.Start(ctx); err != nil {
				a.logger.Error("Polling stopped with error", zap.Error(err))
				stop()
			}
		}()
	}

	<-ctx.Done()

	a.logger.Info("Shutting down...")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	a.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return nil
}
