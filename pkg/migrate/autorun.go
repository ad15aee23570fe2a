package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/db"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
)

// Target describes one service's schema: its goose directory for Postgres and
// the gorm models used to build the same tables on SQLite.
type Target struct {
	Service string
	Dir     string
	Models  []any
}

// MaybeRunDev brings the schema up at boot. SQLite databases are always
// auto-migrated from the models; Postgres runs goose only in dev with the
// AutoMigrate flag enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client, target Target) error {
	if client == nil {
		return fmt.Errorf("db client is required")
	}
	dir := target.Dir
	if dir == "" {
		dir = ServiceDir(DefaultDir, target.Service)
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"dialect": client.Dialect(),
		"service": target.Service,
	})

	if client.Dialect() == "sqlite" {
		logg.Info(ctx, "auto-migrating sqlite schema")
		if err := AutoMigrate(ctx, client, target.Models...); err != nil {
			return err
		}
		return nil
	}

	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(logg.WithField(ctx, "dir", dir), "running goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, "postgres", target.Service, dir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}

// AutoMigrate creates or updates tables for the provided models.
func AutoMigrate(ctx context.Context, client *db.Client, models ...any) error {
	if len(models) == 0 {
		return fmt.Errorf("no models to migrate")
	}
	if err := client.DB().WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	return nil
}
