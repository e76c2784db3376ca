package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starstrip/starstrip-planner/internal/config"
	"github.com/starstrip/starstrip-planner/internal/model"
)

func TestNewStoreSQLite(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "server.db")

	s, err := NewStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Profiles().GetSnapshot(context.Background(), "global", model.KindFavorites)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestNewStoreSQLiteDefaultPath(t *testing.T) {
	t.Setenv("STARSTRIP_HOME", t.TempDir())
	cfg := config.NewForTesting()

	s, err := NewStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestNewStoreRejects(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = "postgres"
	_, err := NewStore(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err, "missing dsn")

	cfg.DBDriver = "spanner"
	_, err = NewStore(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
