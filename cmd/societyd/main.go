package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/societyhq/societyd/internal/api"
	"github.com/societyhq/societyd/internal/auth"
	"github.com/societyhq/societyd/internal/config"
	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/scheduler"
	"github.com/societyhq/societyd/internal/service"
	"github.com/societyhq/societyd/internal/sheets"
	"github.com/societyhq/societyd/internal/storage/sqlite"
	"github.com/societyhq/societyd/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	transactions := service.NewTransactionService(store)
	notifications := service.NewNotificationService(store)
	maintenance := service.NewMaintenanceService(store, transactions, notifications)

	var minMonth models.MonthKey
	if cfg.MinExportMonth != "" {
		if minMonth, err = models.ParseMonthKey(cfg.MinExportMonth); err != nil {
			slog.Error("Invalid MIN_EXPORT_MONTH", "value", cfg.MinExportMonth, "error", err)
			os.Exit(1)
		}
	}

	server := &api.Server{
		Auth:          service.NewAuthService(store, authenticator, tokens),
		Residents:     service.NewResidentService(store),
		Transactions:  transactions,
		Balances:      service.NewBalanceService(store),
		Maintenance:   maintenance,
		Notifications: notifications,
		Exporter:      sheets.NewExporter(store, minMonth),
		Importer:      sheets.NewImporter(store),
		Tokens:        tokens,
		Admins:        store,
	}

	app := fiber.New(fiber.Config{
		AppName: "societyd",
	})
	app.Use(recover.New())
	app.Use(cors.New())
	server.RegisterRoutes(app)

	sweeper := scheduler.New(maintenance, cfg.SweepCronSpec)
	if err := sweeper.Start(); err != nil {
		slog.Error("Failed to start sweep scheduler", "error", err)
		os.Exit(1)
	}

	go func() {
		slog.Info("Server starting", "address", cfg.ListenAddr)
		if err := app.Listen(cfg.ListenAddr); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	sweeper.Stop()
	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
