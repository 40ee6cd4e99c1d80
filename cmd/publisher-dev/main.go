package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/joho/godotenv"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"go.uber.org/zap"

	"tgpublisher/internal/app"
	"tgpublisher/migrations"
)

func main() {
	logger := zap.Must(zap.NewDevelopment())
	defer logger.Sync()

	// Token and admin IDs normally come from .env
	_ = godotenv.Load()

	ctx := context.Background()

	logger.Info("Starting ClickHouse testcontainer...")

	clickhouseContainer, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword("devpassword"),
		clickhouse.WithDatabase("default"),
	)
	if err != nil {
		logger.Fatal("Failed to start ClickHouse container", zap.Error(err))
	}

	// Ensure container cleanup on exit
	defer func() {
		logger.Info("Stopping ClickHouse container...")
		if err := clickhouseContainer.Terminate(ctx); err != nil {
			logger.Warn("Failed to terminate container", zap.Error(err))
		}
	}()

	host, err := clickhouseContainer.Host(ctx)
	if err != nil {
		logger.Fatal("Failed to get container host", zap.Error(err))
	}

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	if err != nil {
		logger.Fatal("Failed to get container port", zap.Error(err))
	}

	logger.Info("ClickHouse started", zap.String("host", host), zap.String("port", port.Port()))

	if err := migrate(ctx, host, port.Port()); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// Set environment variables for the application
	os.Setenv("STORAGE_BACKEND", "clickhouse")
	os.Setenv("CLICKHOUSE_HOST", host)
	os.Setenv("CLICKHOUSE_PORT", port.Port())
	os.Setenv("CLICKHOUSE_DATABASE", "default")
	os.Setenv("CLICKHOUSE_USER", "default")
	os.Setenv("CLICKHOUSE_PASSWORD", "devpassword")
	os.Setenv("CLICKHOUSE_USE_TLS", "false")
	os.Setenv("WEBHOOK_MODE", "false")
	if os.Getenv("LOG_FORMAT") == "" {
		os.Setenv("LOG_FORMAT", "console")
	}

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" && os.Getenv("BOT_TOKEN") == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN not set. The bot will fail to start without a valid token.")
	}
	if os.Getenv("SUPER_ADMIN_IDS") == "" && os.Getenv("SUPER_ADMIN_ID") == "" {
		logger.Warn("SUPER_ADMIN_IDS not set. Nobody will be able to manage the bot.")
	}

	logger.Info("Starting application with ClickHouse backend...")

	application, err := app.New()
	if err != nil {
		logger.Error("Failed to create application", zap.Error(err))
		return
	}

	// Run returns on SIGINT/SIGTERM, the deferred cleanup then stops the container
	if err := application.Run(); err != nil {
		logger.Error("Application error", zap.Error(err))
	}
}

// migrate applies the embedded ClickHouse schema to the container
func migrate(ctx context.Context, host, port string) error {
	dsn := fmt.Sprintf("clickhouse://default:devpassword@%s:%s/default?dial_timeout=10s", host, port)
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := migrations.NewProvider(migrations.ClickHouse, db)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}
