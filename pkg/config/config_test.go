package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg := LoadFromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "./.ledger", cfg.Ledger.Dir)
	assert.Equal(t, 200, cfg.Ledger.SnapshotDepth)
	assert.Equal(t, "auto", cfg.Sync.Mode)
	assert.Equal(t, 7420, cfg.Server.Port)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("DEVE_LEDGER_DIR", "/tmp/myledger")
	t.Setenv("DEVE_LEDGER_SYNC_MODE", "MANUAL")
	t.Setenv("DEVE_LEDGER_WS_PORT", "9000")

	cfg := LoadFromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/tmp/myledger", cfg.Ledger.Dir)
	assert.Equal(t, "manual", cfg.Sync.Mode)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Run("empty ledger dir", func(t *testing.T) {
		cfg := LoadFromEnv()
		cfg.Ledger.Dir = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown sync mode", func(t *testing.T) {
		cfg := LoadFromEnv()
		cfg.Sync.Mode = "eventual"
		assert.Error(t, cfg.Validate())
	})

	t.Run("low pbkdf2 iterations", func(t *testing.T) {
		cfg := LoadFromEnv()
		cfg.Sync.PBKDF2Iterations = 1000
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid port", func(t *testing.T) {
		cfg := LoadFromEnv()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})
}
