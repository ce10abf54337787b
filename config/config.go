/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PoolConfig sizes the handle pools for resource kinds that are not safe
// for concurrent use.
type PoolConfig struct {
	// Size is the bounded pool capacity.
	Size int `yaml:"size"`
	// CheckoutTimeout bounds how long a checkout may wait before failing
	// fast with ResourceExhausted.
	CheckoutTimeout time.Duration `yaml:"checkout_timeout"`
}

// OffloadConfig tunes the background offload queue.
type OffloadConfig struct {
	// Workers is the consumer pool size.
	Workers int `yaml:"workers"`
	// LeaseDuration is how long a delivery holds its lease.
	LeaseDuration time.Duration `yaml:"lease_duration"`
	// MaxRetries is the broker retry budget before dead-lettering.
	MaxRetries int `yaml:"max_retries"`
	// PollInterval is the idle wait between broker polls.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LoggingConfig controls the zerolog output level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config is the facade configuration.
type Config struct {
	Pool    PoolConfig    `yaml:"pool"`
	Offload OffloadConfig `yaml:"offload"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Pool: PoolConfig{
			Size:            8,
			CheckoutTimeout: 5 * time.Second,
		},
		Offload: OffloadConfig{
			Workers:       4,
			LeaseDuration: 30 * time.Second,
			MaxRetries:    3,
			PollInterval:  250 * time.Millisecond,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file and applies environment overrides on top of
// defaults. A missing file is not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %q: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LoadWithDotenv loads a .env file into the process environment first (if
// present), then behaves like Load.
func LoadWithDotenv(path string) (Config, error) {
	_ = godotenv.Load()
	return Load(path)
}

// applyEnv overrides configuration from FASTPATH_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("FASTPATH_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pool.Size = n
		}
	}
	if v := os.Getenv("FASTPATH_POOL_CHECKOUT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Pool.CheckoutTimeout = d
		}
	}
	if v := os.Getenv("FASTPATH_OFFLOAD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Offload.Workers = n
		}
	}
	if v := os.Getenv("FASTPATH_OFFLOAD_LEASE_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Offload.LeaseDuration = d
		}
	}
	if v := os.Getenv("FASTPATH_OFFLOAD_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Offload.MaxRetries = n
		}
	}
	if v := os.Getenv("FASTPATH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
