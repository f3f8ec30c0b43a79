package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/walletpulse/backend/src/config"
	"github.com/username/walletpulse/backend/src/database"
	"github.com/username/walletpulse/backend/src/handlers"
	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/processors"
	"github.com/username/walletpulse/backend/src/security"
	"github.com/username/walletpulse/backend/src/services"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("WalletPulse backend server starting...")

	if !security.SecretStrongEnough(config.Cfg.JWTSecret) {
		logger.L.Error("JWT_SECRET configuration invalid: at least 32 characters are required.")
		os.Exit(1)
	}

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations()
	defer database.DB.Close()

	tables, err := processors.LoadTables(config.Cfg.ReportTablesPath)
	if err != nil {
		logger.L.Error("Failed to load report tables", "path", config.Cfg.ReportTablesPath, "error", err)
		os.Exit(1)
	}
	logger.L.Info("Report tables loaded", "version", tables.Version, "baseCurrency", tables.BaseCurrency)

	store := services.NewSQLStore(database.DB)
	provider := services.NewYahooQuoteProvider(config.Cfg.QuoteAPIBaseURL, config.Cfg.QuoteTimeout)
	quoteService := services.NewQuoteService(provider, store, config.Cfg.QuoteCacheTTL, config.Cfg.QuoteTimeout)
	reportService := services.NewReportService(store, quoteService, tables, services.ReportOptions{
		ProjectionHorizonMonths: config.Cfg.ProjectionHorizonMonths,
		UpcomingWindowDays:      config.Cfg.UpcomingWindowDays,
		IncludeCash:             config.Cfg.AllocationIncludeCash,
		IncludeDebt:             config.Cfg.AllocationIncludeDebt,
	})
	ledgerService := services.NewLedgerService(store)
	worker := services.NewRecurringWorker(store, config.Cfg.RecurringInterval, config.Cfg.RecurringRunOnStartup)
	authService := security.NewAuthService(config.Cfg.JWTSecret)

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:           authService,
		Reports:        handlers.NewReportHandler(reportService),
		Transactions:   handlers.NewTransactionHandler(ledgerService),
		Recurring:      handlers.NewRecurringHandler(ledgerService),
		AllowedOrigins: config.Cfg.AllowedOrigins,
		Limiter:        handlers.DefaultLimiter(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.L.Info("Shutdown signal received")
	case err := <-serverErr:
		logger.L.Error("Server failed", "error", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
	}
	wg.Wait()
	logger.L.Info("Server stopped")
}
