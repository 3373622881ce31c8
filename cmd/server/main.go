package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/api"
	"github.com/Oliverngu/roster-advisor/pkg/postgres"
	"github.com/Oliverngu/roster-advisor/pkg/utils/logging"
)

func main() {
	port := pflag.Int("port", 8080, "HTTP server port")
	env := pflag.String("env", "dev", "Environment (dev, prod)")
	migrate := pflag.Bool("migrate", false, "Run pending migrations before serving")
	pflag.Parse()

	logger, err := logging.InitLogger(*env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, *port, *migrate); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(logger *zap.Logger, port int, migrate bool) error {
	// .env is optional; real environments set DATABASE_URL directly
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	ctx := context.Background()
	database, err := postgres.NewDB(ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if migrate {
		logger.Info("Running migrations")
		if err := database.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	handler := api.NewHandler(database, cfg, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.Int("port", port), zap.String("unit_id", cfg.DefaultUnitID))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	return nil
}
