package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ProcessConfig is spec.md §6's process-wide configuration, read once at
// startup: which runtime adapter is bound, and the defaults fuel.Policy
// falls back to when a caller omits fuel/timeout_ms.
type ProcessConfig struct {
	Runtime          string `mapstructure:"runtime"`
	DefaultFuel      uint64 `mapstructure:"default_fuel"`
	DefaultTimeoutMS uint64 `mapstructure:"default_timeout_ms"`
}

// Load reads process configuration via viper from, in priority order,
// MANTLE_-prefixed environment variables, a config file (path if non-empty,
// otherwise $HOME/.mantle/config.yaml when it exists), and the documented
// defaults.
func Load(path string) (ProcessConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("mantle")
	v.AutomaticEnv()

	v.SetDefault("runtime", "wasmtime")
	v.SetDefault("default_fuel", 100_000)
	v.SetDefault("default_timeout_ms", 5_000)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return ProcessConfig{}, fmt.Errorf("read process config %s: %w", path, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".mantle"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return ProcessConfig{}, fmt.Errorf("read process config: %w", err)
			}
		}
	}

	var cfg ProcessConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ProcessConfig{}, fmt.Errorf("unmarshal process config: %w", err)
	}
	return cfg, nil
}
