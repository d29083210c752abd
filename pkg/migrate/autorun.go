package migrate

import (
	"context"
	"fmt"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/pkg/db"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
)

// MaybeRun applies pending migrations when db.auto_migrate is enabled.
func MaybeRun(ctx context.Context, cfg config.DBConfig, logg *logger.Logger, client *db.Client) error {
	if !cfg.AutoMigrate {
		return nil
	}

	if logg == nil {
		logg = logger.Nop()
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "driver", client.Driver())
	logg.Info(ctx, "running goose migrations (auto-migrate)")

	if err := Run(ctx, sqlDB, client.Driver(), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
