package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Rudolph001/sqlsentry/internal/sentry/logger"
)

// Store persists the RiskConfig as a single JSON document. Loading never
// fails: a missing or corrupt file falls back to the compiled-in defaults
// with a logged warning so the process keeps operating.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted RiskConfig, or the compiled-in defaults if the
// file is absent or corrupt. When the file is absent the defaults are
// persisted so the operator has a document to edit.
func (s *Store) Load() *RiskConfig {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.L().Infow("No persisted risk config, writing defaults",
				"path", s.path)
			cfg := DefaultRiskConfig()
			if saveErr := s.Save(cfg); saveErr != nil {
				logger.L().Warnw("Failed to persist default risk config",
					"path", s.path,
					"error", saveErr)
			}
			return cfg
		}
		logger.L().Warnw("Cannot open risk config, falling back to defaults",
			"path", s.path,
			"error", err)
		return DefaultRiskConfig()
	}
	defer f.Close()

	cfg, warnings, err := DecodeRiskConfig(f)
	if err != nil {
		logger.L().Warnw("Corrupt risk config, falling back to defaults",
			"path", s.path,
			"error", err)
		return DefaultRiskConfig()
	}
	for _, w := range warnings {
		logger.L().Warnw("Risk config advisory", "path", s.path, "advisory", w)
	}
	return cfg
}

// Save persists the config atomically (write temp file, then rename).
func (s *Store) Save(cfg *RiskConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal risk config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write risk config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace risk config: %w", err)
	}

	logger.L().Debugw("Persisted risk config", "path", s.path, "bytes", len(data))
	return nil
}

// Export serializes a config as indented JSON.
func Export(cfg *RiskConfig) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export risk config: %w", err)
	}
	return string(data), nil
}

// Import decodes, validates and persists a config from serialized JSON.
// Structurally invalid input is rejected without touching the persisted
// state. Returns the new config and any advisory warnings.
func (s *Store) Import(text string) (*RiskConfig, []string, error) {
	cfg, warnings, err := DecodeRiskConfig(strings.NewReader(text))
	if err != nil {
		return nil, nil, fmt.Errorf("import risk config: %w", err)
	}
	if err := s.Save(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, warnings, nil
}

// ResetToDefaults replaces the persisted config with the compiled-in
// defaults and returns them.
func (s *Store) ResetToDefaults() (*RiskConfig, error) {
	cfg := DefaultRiskConfig()
	if err := s.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
