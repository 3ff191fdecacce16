package commands

import (
	"context"
	"fmt"

	"github.com/grantbook-dev/grantbook/internal/config"
	"github.com/grantbook-dev/grantbook/internal/store"
)

// openStore constructs the configured record store backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Foundation.ID, cfg.Foundation.UserID)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL, cfg.Foundation.ID, cfg.Foundation.UserID)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
