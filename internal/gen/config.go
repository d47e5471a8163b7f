package gen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GenConfig drives the synthetic audit-log generator.
type GenConfig struct {
	Output    string  `yaml:"output"`
	Seed      int64   `yaml:"seed"`
	Rows      int     `yaml:"rows"`
	StartDate string  `yaml:"startDate"` // "2025-01-01"; empty = today
	SpanDays  int     `yaml:"spanDays"`
	Users     int     `yaml:"users"`
	HighPct   float64 `yaml:"highPct"`   // share of high-risk rows
	MediumPct float64 `yaml:"mediumPct"` // share of medium-risk rows
}

func readGenConfig(path string) (GenConfig, error) {
	var cfg GenConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if cfg.Output == "" {
		cfg.Output = "audit_log.csv"
	}
	if cfg.Rows <= 0 {
		cfg.Rows = 5000
	}
	if cfg.SpanDays <= 0 {
		cfg.SpanDays = 30
	}
	if cfg.Users <= 0 {
		cfg.Users = 5
	}
	if cfg.HighPct <= 0 {
		cfg.HighPct = 0.2
	}
	if cfg.MediumPct <= 0 {
		cfg.MediumPct = 0.3
	}
	if cfg.HighPct+cfg.MediumPct >= 1.0 {
		return cfg, fmt.Errorf("highPct + mediumPct must be below 1.0")
	}
	return cfg, nil
}
