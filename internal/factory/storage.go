package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/config"
	"github.com/starstrip/starstrip-planner/internal/localstate"
	storepkg "github.com/starstrip/starstrip-planner/internal/store"
	storepg "github.com/starstrip/starstrip-planner/internal/store/postgres"
	storesqlite "github.com/starstrip/starstrip-planner/internal/store/sqlite"
)

// NewStore returns the store.Store selected by cfg.DBDriver.
// The sqlite store is ready on return. The postgres store is opened synchronously
// and its schema bootstrap runs in the background so startup stays fast.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			p, err := localstate.ServerDBPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		log.Debug().Str("driver", cfg.DBDriver).Str("path", path).Msg("opening store")
		return storesqlite.New(path)

	case "postgres":
		dsn := cfg.PostgresDSN
		if dsn == "" {
			return nil, fmt.Errorf("STARSTRIP_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}

		// Open connection synchronously since health checks need it immediately
		db, err := storepg.Open(dsn)
		if err != nil {
			return nil, err
		}

		go func() {
			bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
			bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
			defer cancel()

			if err := storepg.Migrate(bootstrapCtx, db); err != nil {
				log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store bootstrap failed")
			} else {
				log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap completed")
			}
		}()

		return storepg.NewWithDB(db), nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
}
