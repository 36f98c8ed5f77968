package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Root is the directory holding the `commands` and `extensions`
	// subdirectories that discovery scans.
	Root string `mapstructure:"root"`

	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`
}

// LoadConfig reads the layered base configuration: built-in defaults, then an
// optional config file, then environment variables with the CMDGRID_ prefix.
// CLI flags override these at the front-end (see internal/cli).
func LoadConfig() (Config, error) {
	v := viper.New()

	v.SetDefault("root", ".")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("CMDGRID_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "cmdgrid"))
		v.AddConfigPath(".")
		v.SetConfigName("cmdgrid")
	}

	v.SetEnvPrefix("CMDGRID")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and env still apply.
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// NewConfig validates a fully-resolved configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
