package dupfind

import (
	"fmt"

	"github.com/spf13/viper"
)

// BaseConfig holds the run-invariant settings that are not part of the
// per-invocation hash-component/path selection. Those live on the cobra
// command's own flags; this struct only carries what belongs in a config
// file or environment (logging, plus default_db and default_workers).
// The --db and --workers flags take their defaults from GetDefault();
// default_db and default_workers values read from a config file or the
// environment are loaded here but are not applied to those flags.
type BaseConfig struct {
	DefaultDB      string `mapstructure:"default_db"      yaml:"default_db"`
	DefaultWorkers int    `mapstructure:"default_workers" yaml:"default_workers"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// LoadConfig reads the active viper configuration into a BaseConfig.
func LoadConfig() (*BaseConfig, error) {
	cfg := &BaseConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
