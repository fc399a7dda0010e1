package handlers

import (
	"context"
	"fmt"

	"github.com/mosaic-portal/mosaic/internal/config"
	"github.com/mosaic-portal/mosaic/internal/store"
)

// Migrate applies pending database migrations and exits.
func Migrate(ctx context.Context, configPath string) error {
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

	fmt.Println("migrations applied")
	return nil
}
