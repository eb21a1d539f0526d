package countries

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the file/environment representation of repository settings.
type Config struct {
	DataDir          string        `mapstructure:"data_dir" json:"data_dir"`
	Engine           string        `mapstructure:"engine" json:"engine"`
	ProgramCacheSize uint64        `mapstructure:"program_cache_size" json:"program_cache_size"`
	Hydrate          HydrateConfig `mapstructure:"hydrate" json:"hydrate"`
}

// HydrateConfig controls hydration of Call results.
type HydrateConfig struct {
	// Before hydrates results before they are stored in the result cache.
	Before bool `mapstructure:"before" json:"before"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DataDir:          DefaultDataDir,
		Engine:           EngineExpr,
		ProgramCacheSize: 256,
	}
}

// ConfigEnvPrefix prefixes environment overrides, e.g. COUNTRIES_HYDRATE_BEFORE.
const ConfigEnvPrefix = "COUNTRIES"

// LoadConfig reads path (YAML, TOML or JSON, by extension) on top of
// DefaultConfig, then applies COUNTRIES_* environment overrides. An empty
// path only applies defaults and environment.
func LoadConfig(path string) (Config, error) {
	v := NewConfigViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("countries: read config %q: %w", path, err)
		}
	}
	return ConfigFromViper(v)
}

// NewConfigViper returns a viper instance seeded with defaults and bound to
// the environment, so callers can bind their own flags before decoding.
func NewConfigViper() *viper.Viper {
	defaults := DefaultConfig()
	v := viper.New()
	v.SetEnvPrefix(ConfigEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("engine", defaults.Engine)
	v.SetDefault("program_cache_size", defaults.ProgramCacheSize)
	v.SetDefault("hydrate.before", defaults.Hydrate.Before)
	return v
}

// ConfigFromViper decodes v into a Config.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("countries: decode config: %w", err)
	}
	return cfg, nil
}
