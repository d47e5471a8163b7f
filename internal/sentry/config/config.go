package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type LoggingCfg struct {
	Level        string `mapstructure:"level"`
	ConsoleLevel string `mapstructure:"console_level"`
	DebugFile    string `mapstructure:"debug_file"`
	Development  bool   `mapstructure:"development"`
}

type AnalysisCfg struct {
	RiskConfigFile string `mapstructure:"risk_config_file"`
	Workers        int    `mapstructure:"workers"`
}

type OutputCfg struct {
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

type Config struct {
	Version  string      `mapstructure:"version"`
	Analysis AnalysisCfg `mapstructure:"analysis"`
	Output   OutputCfg   `mapstructure:"output"`
	Logging  LoggingCfg  `mapstructure:"logging"`
}

var cfg *Config

// Load populates global config from a viper instance
func Load(v *viper.Viper) error {
	// set defaults
	v.SetDefault("version", "0.1")
	v.SetDefault("analysis.risk_config_file", "risk_config.json")
	v.SetDefault("analysis.workers", 0) // 0 = one per CPU
	v.SetDefault("output.format", "ndjson")
	v.SetDefault("logging.level", "info")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	cfg = &c
	return nil
}

func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
	}
	return cfg
}
