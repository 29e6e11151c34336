// Package config loads corenoded's configuration from a YAML file,
// CORENODE_-prefixed environment variables, and command-line flags, in that
// increasing order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every setting corenoded needs to stand up the module
// repository and the script scheduler.
type Config struct {
	ModulesDir      string        `mapstructure:"modules_dir"`
	BlueprintsDir   string        `mapstructure:"blueprints_dir"`
	PeerID          string        `mapstructure:"peer_id"`
	TimerResolution time.Duration `mapstructure:"timer_resolution"`
	ParticleTTL     time.Duration `mapstructure:"particle_ttl"`
	MaxFailures     uint8         `mapstructure:"max_failures"`
	LogLevel        string        `mapstructure:"log_level"`
	LogJSON         bool          `mapstructure:"log_json"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
}

// Default returns the configuration corenoded falls back to when no file,
// env var, or flag overrides a field.
func Default() Config {
	return Config{
		ModulesDir:      "modules",
		BlueprintsDir:   "blueprints",
		PeerID:          "local",
		TimerResolution: time.Second,
		ParticleTTL:     30 * time.Second,
		MaxFailures:     3,
		LogLevel:        "info",
		LogJSON:         false,
		MetricsAddr:     ":9090",
	}
}

// Load reads configFile (if non-empty), overlays CORENODE_-prefixed
// environment variables, then overlays flags, and returns the result.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("modules_dir", def.ModulesDir)
	v.SetDefault("blueprints_dir", def.BlueprintsDir)
	v.SetDefault("peer_id", def.PeerID)
	v.SetDefault("timer_resolution", def.TimerResolution)
	v.SetDefault("particle_ttl", def.ParticleTTL)
	v.SetDefault("max_failures", def.MaxFailures)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_json", def.LogJSON)
	v.SetDefault("metrics_addr", def.MetricsAddr)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix("CORENODE")
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("config: binding flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
