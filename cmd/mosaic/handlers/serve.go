// Package handlers implements the execution logic behind the CLI commands.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mosaic-portal/mosaic/internal/config"
	"github.com/mosaic-portal/mosaic/internal/platform/grafana"
	"github.com/mosaic-portal/mosaic/internal/platform/nocodb"
	"github.com/mosaic-portal/mosaic/internal/provisioning"
	"github.com/mosaic-portal/mosaic/internal/server"
	"github.com/mosaic-portal/mosaic/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Serve loads the configuration, migrates the database, and runs the API
// server until the context is canceled.
func Serve(ctx context.Context, configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	tables := nocodb.NewClient(cfg.NocoDB.BaseURL, cfg.NocoDB.Token)
	dashboards := grafana.NewClient(cfg.Grafana.BaseURL, cfg.Grafana.Token, cfg.Grafana.DatasourceUID)
	orchestrator := provisioning.NewOrchestrator(tables, dashboards, db, db)

	api := server.New(orchestrator, db, db, cfg.Auth.Secret)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
