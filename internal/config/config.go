// Package config loads and validates devdedup configuration from file,
// environment variables, and defaults.
package config

import (
	"errors"

	"github.com/Sumatoshi-tech/devdedup/internal/blocking"
	"github.com/Sumatoshi-tech/devdedup/internal/scoring"
)

// Default values for deduplication settings.
const (
	// DefaultHeuristic is the pair scorer used when none is configured.
	DefaultHeuristic = scoring.HeuristicImproved

	// DefaultThreshold is the improved-heuristic match cutoff.
	DefaultThreshold = 0.85

	// DefaultBlocking is the candidate-bucket strategy.
	DefaultBlocking = string(blocking.StrategyBoth)

	// DefaultMaxPairs caps candidate pairs per run.
	DefaultMaxPairs = 1000

	// DefaultWorkers of zero means one scoring goroutine per CPU.
	DefaultWorkers = 0

	// DefaultMaxCommits of zero walks the full history.
	DefaultMaxCommits = 0

	// DefaultCacheDir is where extracted records are cached.
	DefaultCacheDir = ".devdedup-cache"

	// DefaultOutputFormat renders results as terminal tables.
	DefaultOutputFormat = "table"
)

// Output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Config is the top-level configuration struct for devdedup.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Heuristic string          `mapstructure:"heuristic"`
	Threshold float64         `mapstructure:"threshold"`
	Weights   scoring.Weights `mapstructure:"weights"`
	Blocking  string          `mapstructure:"blocking"`
	MaxPairs  int             `mapstructure:"max_pairs"`
	Workers   int             `mapstructure:"workers"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Output    OutputConfig    `mapstructure:"output"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ExtractConfig holds history extraction settings.
type ExtractConfig struct {
	MaxCommits  int    `mapstructure:"max_commits"`
	FirstParent bool   `mapstructure:"first_parent"`
	Cache       bool   `mapstructure:"cache"`
	CacheDir    string `mapstructure:"cache_dir"`
}

// OutputConfig holds result rendering settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
	Plot   bool   `mapstructure:"plot"`
}

// TelemetryConfig holds observability settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	LogLevel     string  `mapstructure:"log_level"`
	LogJSON      bool    `mapstructure:"log_json"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidMaxPairs indicates the max pairs value is negative.
	ErrInvalidMaxPairs = errors.New("max_pairs must be non-negative")
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("workers must be non-negative")
	// ErrInvalidMaxCommits indicates the max commits value is negative.
	ErrInvalidMaxCommits = errors.New("extract.max_commits must be non-negative")
	// ErrInvalidFormat indicates an unknown output format.
	ErrInvalidFormat = errors.New("output.format must be table, csv, json, or yaml")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	_, err := scoring.Select(c.Heuristic, c.Weights, c.Threshold)
	if err != nil {
		return err
	}

	_, err = blocking.ParseStrategy(c.Blocking)
	if err != nil {
		return err
	}

	if c.MaxPairs < 0 {
		return ErrInvalidMaxPairs
	}

	if c.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Extract.MaxCommits < 0 {
		return ErrInvalidMaxCommits
	}

	switch c.Output.Format {
	case FormatTable, FormatCSV, FormatJSON, FormatYAML:
	default:
		return ErrInvalidFormat
	}

	return nil
}
