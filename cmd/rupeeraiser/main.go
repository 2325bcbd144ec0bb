package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaniyamudhan/rupeeraiser/internal/config"
	"github.com/kaniyamudhan/rupeeraiser/internal/credentials"
	"github.com/kaniyamudhan/rupeeraiser/internal/database"
	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/handlers"
	"github.com/kaniyamudhan/rupeeraiser/internal/logger"
	"github.com/kaniyamudhan/rupeeraiser/internal/remote"
	"github.com/kaniyamudhan/rupeeraiser/internal/store"
)

// @title           RupeeRaiser local API
// @version         1.0
// @description     Local API over the RupeeRaiser sync store.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Credential store
	dbConfig, err := database.NewConfig(cfg.CredentialDriver, cfg.CredentialPath)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("closing credential store: %v", err)
		}
	}()
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Sync store
	client := remote.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.RequestTimeout})
	notifications := store.NewQueueNotifier(store.DefaultQueueLimit)
	s := store.New(client, credentials.NewGormStore(dbManager.DB()), notifications, cfg.DefaultAccount)

	if err := s.Start(ctx); err != nil {
		// Only an unreadable credential store is fatal. A rejected or
		// unverifiable credential leaves the store logged out; a failed bulk
		// fetch keeps the restored session with empty collections.
		if apperrors.IsKind(err, apperrors.KindInternal) {
			return fmt.Errorf("failed to start store: %w", err)
		}
		log.Warnw("Could not restore the stored session", "kind", apperrors.KindOf(err), "error", err)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Store:          s,
		Notifications:  notifications,
		APIKey:         cfg.LocalAPIKey,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting RupeeRaiser local API on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("local API stopped: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("local API shutdown: %v", err)
	}
	s.Wait()
	return nil
}
