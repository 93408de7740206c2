package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/devdedup/internal/scoring"
)

// configName is the config file name without extension.
const configName = ".devdedup"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for devdedup settings.
const envPrefix = "DEVDEDUP"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	defaultWeights := scoring.DefaultWeights()

	viperCfg.SetDefault("heuristic", DefaultHeuristic)
	viperCfg.SetDefault("threshold", DefaultThreshold)
	viperCfg.SetDefault("blocking", DefaultBlocking)
	viperCfg.SetDefault("max_pairs", DefaultMaxPairs)
	viperCfg.SetDefault("workers", DefaultWorkers)

	viperCfg.SetDefault("weights.name", defaultWeights.Name)
	viperCfg.SetDefault("weights.email_local", defaultWeights.EmailLocal)
	viperCfg.SetDefault("weights.domain", defaultWeights.Domain)
	viperCfg.SetDefault("weights.initials", defaultWeights.Initials)

	viperCfg.SetDefault("extract.max_commits", DefaultMaxCommits)
	viperCfg.SetDefault("extract.first_parent", false)
	viperCfg.SetDefault("extract.cache", false)
	viperCfg.SetDefault("extract.cache_dir", DefaultCacheDir)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.dir", "")
	viperCfg.SetDefault("output.plot", false)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.log_level", "info")
	viperCfg.SetDefault("telemetry.log_json", false)
	viperCfg.SetDefault("telemetry.metrics_addr", "")
}
