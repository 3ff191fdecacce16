package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("found-1", "user-1")

	assert.Equal(t, "found-1", cfg.Foundation.ID)
	assert.Equal(t, "user-1", cfg.Foundation.UserID)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.InDelta(t, 0.70, cfg.Match.Threshold, 1e-9)
	assert.Equal(t, "import", cfg.Import.Dir)
	assert.Equal(t, 30*time.Second, cfg.Import.RowTimeout)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "grantbook.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "grantbook.db", cfg.Store.DatabaseURL)
	assert.InDelta(t, 0.70, cfg.Match.Threshold, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Import.RowTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grantbook.yaml")

	in := Default("found-1", "user-1")
	in.Store.Driver = "postgres"
	in.Store.DatabaseURL = "postgres://localhost/grantbook"
	in.Match.Threshold = 0.85
	in.Import.Dir = "incoming"

	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "found-1", out.Foundation.ID)
	assert.Equal(t, "user-1", out.Foundation.UserID)
	assert.Equal(t, "postgres", out.Store.Driver)
	assert.Equal(t, "postgres://localhost/grantbook", out.Store.DatabaseURL)
	assert.InDelta(t, 0.85, out.Match.Threshold, 1e-9)
	assert.Equal(t, "incoming", out.Import.Dir)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GRANTBOOK_STORE_DRIVER", "postgres")
	t.Setenv("GRANTBOOK_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "grantbook.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger_RejectsBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "console"})
	require.Error(t, err)
}
