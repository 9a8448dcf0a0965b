package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tally.com/internal/application/usecase"
	"tally.com/internal/domain/port"
	"tally.com/internal/infrastructure/config"
	"tally.com/internal/infrastructure/events"
	httphandler "tally.com/internal/infrastructure/http"
	"tally.com/internal/infrastructure/logger"
	"tally.com/internal/infrastructure/repository"

	"github.com/spf13/cobra"
)

const serverDir = "server"

var apiServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Run API Server.",
	RunE: func(_ *cobra.Command, _ []string) error {
		// Initialize logger
		appLogger := logger.NewLogger()

		// Get config directory (relative to where the binary is run from)
		configDir := filepath.Join("cmd", "config", serverDir)
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			// Try absolute path from project root
			configDir = filepath.Join(".", "cmd", "config", serverDir)
		}

		// Load configuration
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to load config", err)
			return fmt.Errorf("failed to load config: %w", err)
		}

		appLogger.LogInfo(context.TODO(), "Configuration loaded",
			"port", cfg.Server.Port,
			"account_count", cfg.Bank.AccountCount,
			"initial_balance", cfg.Bank.InitialBalance,
			"settlement_interval", cfg.Settlement.Interval.String(),
			"settlement_batch_size", cfg.Settlement.BatchSize)

		// Settlement event stream: Kafka when brokers are configured,
		// otherwise discarded
		var publisher port.SettlementPublisher = events.NoopPublisher{}
		if len(cfg.Events.Brokers) > 0 {
			kafkaPublisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, appLogger)
			defer func() {
				if err := kafkaPublisher.Close(); err != nil {
					appLogger.LogError(context.TODO(), "Failed to close Kafka publisher", err)
				}
			}()
			publisher = kafkaPublisher
		}

		// Initialize the ledger with its settlement schedule
		bank := repository.NewInMemoryBank(repository.Config{
			AccountCount:   cfg.Bank.AccountCount,
			InitialBalance: cfg.Bank.InitialBalance,
			BatchSize:      cfg.Settlement.BatchSize,
			SettleInterval: cfg.Settlement.Interval,
		}, publisher, appLogger)

		// Initialize use cases
		submitTransferUseCase := usecase.NewSubmitTransferUseCase(bank)
		getAccountUseCase := usecase.NewGetAccountUseCase(bank)
		getTotalBalanceUseCase := usecase.NewGetTotalBalanceUseCase(bank)

		// Initialize HTTP handler
		handler := httphandler.NewHandler(
			submitTransferUseCase,
			getAccountUseCase,
			getTotalBalanceUseCase,
			appLogger,
		)

		// Setup routes
		mux := handler.SetupRoutes()

		// Create HTTP server
		addr := ":" + cfg.Server.Port
		server := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Channel to capture termination signals
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

		// Error channel to capture errors from server
		errChan := make(chan error, 1)

		// Start server in a goroutine
		go func() {
			appLogger.LogInfo(context.TODO(), "Starting server", "address", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		// Graceful shutdown
		select {
		case <-signalChan:
			appLogger.LogInfo(context.TODO(), "Received termination signal. Initiating graceful shutdown...")

			// Create shutdown context with timeout
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				appLogger.LogError(context.TODO(), "Server forced to shutdown", err)
				return err
			}

			appLogger.LogInfo(context.TODO(), "Server stopped gracefully")
		case err := <-errChan:
			appLogger.LogError(context.TODO(), "Server error", err)
			return err
		}

		return nil
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(apiServerCmd)
}
