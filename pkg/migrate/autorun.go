package migrate

import (
	"context"
	"fmt"

	"github.com/gavelworks/auctiondesk/pkg/config"
	"github.com/gavelworks/auctiondesk/pkg/db"
	"github.com/gavelworks/auctiondesk/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in
// dev mode.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
