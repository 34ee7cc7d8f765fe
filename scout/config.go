package scout

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultParallelThreshold is the candidate-set size below which the
// sequential strategy always wins: pool setup costs more than it saves.
const DefaultParallelThreshold = 512

// DefaultSimplifyToleranceDeg is the Douglas-Peucker tolerance applied to
// line paths when building the pre-filter. ~0.1° keeps boxes tight while
// collapsing densely sampled paths.
const DefaultSimplifyToleranceDeg = 0.1

// Config controls scan execution. The zero value is not usable; start from
// DefaultConfig or LoadConfig.
type Config struct {
	// Workers sizes the parallel strategy's pool. 0 means NumCPU.
	Workers int `yaml:"workers"`
	// ParallelThreshold is the minimum candidate count for the parallel
	// strategy to be considered.
	ParallelThreshold int `yaml:"parallelThreshold"`
	// Prefilter enables the bounding-box pre-filter. Disabling it never
	// changes results, only cost.
	Prefilter bool `yaml:"prefilter"`
	// SimplifyToleranceDeg is the path simplification tolerance used when
	// building pre-filter boxes. <= 0 disables simplification.
	SimplifyToleranceDeg float64 `yaml:"simplifyToleranceDeg"`
}

// DefaultConfig returns the stock scan configuration.
func DefaultConfig() Config {
	return Config{
		Workers:              runtime.NumCPU(),
		ParallelThreshold:    DefaultParallelThreshold,
		Prefilter:            true,
		SimplifyToleranceDeg: DefaultSimplifyToleranceDeg,
	}
}

// LoadConfig reads a YAML config file, layering it over DefaultConfig so
// omitted fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg.normalized(), nil
}

func (c Config) normalized() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ParallelThreshold <= 0 {
		c.ParallelThreshold = DefaultParallelThreshold
	}
	return c
}
