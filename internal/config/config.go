// Package config loads the benchmark harness settings from an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/utkarsh5026/parcol/internal/scheduler"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load. They override values from the file.
const (
	EnvWorkers   = "PARCOL_WORKERS"
	EnvChunkSize = "PARCOL_CHUNK_SIZE"
	EnvScheduler = "PARCOL_SCHEDULER"
	EnvRateLimit = "PARCOL_RATE_LIMIT"
	EnvHistory   = "PARCOL_HISTORY"
	EnvLoops     = "PARCOL_LOOPS"
)

type Config struct {
	Workers   int     `yaml:"workers"`    // 0 means one per CPU
	ChunkSize int     `yaml:"chunk_size"` // 0 means derived from input size
	Scheduler string  `yaml:"scheduler"`  // fifo | round-robin
	RateLimit float64 `yaml:"rate_limit"` // chunks per second, 0 disables
	History   string  `yaml:"history"`    // SQLite file for run history, empty disables
	Loops     int     `yaml:"loops"`      // timed repetitions per measurement
	Sizes     []int   `yaml:"sizes"`      // input sizes to benchmark
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		Scheduler: "fifo",
		Loops:     3,
		Sizes:     []int{1_000, 5_000, 20_000},
	}
}

// Load reads path (skipped when empty), then a .env file in the working
// directory if there is one, then the PARCOL_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// a missing .env is fine
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	intVar := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}

	intVar(EnvWorkers, &c.Workers)
	intVar(EnvChunkSize, &c.ChunkSize)
	intVar(EnvLoops, &c.Loops)

	if v := os.Getenv(EnvScheduler); v != "" {
		c.Scheduler = strings.TrimSpace(v)
	}
	if v := os.Getenv(EnvHistory); v != "" {
		c.History = v
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s=%q is not a number", EnvRateLimit, v))
		} else {
			c.RateLimit = f
		}
	}

	return errors.Join(errs...)
}

// Validate rejects negative values and unknown schedulers.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("chunk size must not be negative, got %d", c.ChunkSize))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %v", c.RateLimit))
	}
	if c.Loops <= 0 {
		errs = append(errs, fmt.Errorf("loops must be positive, got %d", c.Loops))
	}
	for _, n := range c.Sizes {
		if n < 0 {
			errs = append(errs, fmt.Errorf("input sizes must not be negative, got %d", n))
		}
	}
	if _, err := scheduler.ParseStrategy(c.Scheduler); err != nil {
		errs = append(errs, fmt.Errorf("scheduler %q: %w", c.Scheduler, err))
	}

	return errors.Join(errs...)
}

// Strategy returns the scheduling strategy named by c.Scheduler.
func (c *Config) Strategy() (scheduler.SchedulingStrategyType, error) {
	return scheduler.ParseStrategy(c.Scheduler)
}
