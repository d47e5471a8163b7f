package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoad(t *testing.T) {
	t.Run("missing_file_falls_back_and_persists_defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "risk_config.json")
		store := NewStore(path)

		cfg := store.Load()
		assert.Equal(t, DefaultRiskConfig(), cfg)

		// Defaults were written out for the operator to edit.
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("corrupt_file_falls_back_to_defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "risk_config.json")
		require.NoError(t, os.WriteFile(path, []byte("{{{corrupt"), 0644))

		cfg := NewStore(path).Load()
		assert.Equal(t, DefaultRiskConfig(), cfg)
	})

	t.Run("persisted_config_round_trips", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "risk_config.json")
		store := NewStore(path)

		custom := DefaultRiskConfig()
		custom.SQLOperationWeights["DELETE"] = 48
		custom.SensitiveObjects = append(custom.SensitiveObjects, "Invoices")
		require.NoError(t, store.Save(custom))

		loaded := store.Load()
		assert.Equal(t, custom, loaded)
	})
}

func TestStoreImport(t *testing.T) {
	t.Run("rejects_invalid_without_mutating_state", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "risk_config.json")
		store := NewStore(path)

		original := store.Load() // persists defaults

		_, _, err := store.Import(`{"bogus": true}`)
		require.Error(t, err)

		// Persisted state untouched.
		assert.Equal(t, original, store.Load())
	})

	t.Run("import_of_export_is_identity", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "risk_config.json")
		store := NewStore(path)

		cfg := DefaultRiskConfig()
		cfg.RiskThresholds.High = 75
		text, err := Export(cfg)
		require.NoError(t, err)

		imported, warnings, err := store.Import(text)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, cfg, imported)
		assert.Equal(t, cfg, store.Load())
	})
}

func TestStoreResetToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk_config.json")
	store := NewStore(path)

	custom := DefaultRiskConfig()
	custom.RiskThresholds.High = 90
	require.NoError(t, store.Save(custom))

	reset, err := store.ResetToDefaults()
	require.NoError(t, err)
	assert.Equal(t, DefaultRiskConfig(), reset)
	assert.Equal(t, DefaultRiskConfig(), store.Load())
}
