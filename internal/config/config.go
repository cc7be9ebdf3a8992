/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// hardBatchCap bounds the per-request row count regardless of configuration,
// to keep response size and cost bounded.
const hardBatchCap = 50

// Config holds all configuration for the application.
type Config struct {
	// GeminiAPIKey is the bearer credential for the generation service.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	// Model is the generative model identifier.
	Model string `mapstructure:"model"`

	// Expansion policy.
	MaxBatchSize           int `mapstructure:"max_batch_size"`
	SampleSize             int `mapstructure:"sample_size"`
	MaxConsecutiveFailures int `mapstructure:"max_consecutive_failures"`
	FlushEvery             int `mapstructure:"flush_every"`

	// RequestTimeout bounds each generation call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Delimiter is the field separator of the input/output files.
	Delimiter string `mapstructure:"delimiter"`
}

var globalConfig *Config

// Load builds the configuration from defaults, an optional config file,
// and environment variables (DATASET_EXPANDER_* plus GEMINI_API_KEY).
// Flags are bound on top by the command layer.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("model", "")
	v.SetDefault("max_batch_size", 20)
	v.SetDefault("sample_size", 10)
	v.SetDefault("max_consecutive_failures", 3)
	v.SetDefault("flush_every", 1)
	v.SetDefault("request_timeout", 60*time.Second)
	v.SetDefault("delimiter", ",")

	v.SetEnvPrefix("DATASET_EXPANDER")
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about, so bind the two that
	// have no default explicitly.
	_ = v.BindEnv("gemini_api_key")
	_ = v.BindEnv("model")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("dataset-expander")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &cfg, nil
}

// Validate checks policy values. It does not require an API key; the
// command layer decides when a missing credential is fatal.
func (c *Config) Validate() error {
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", c.MaxBatchSize)
	}
	if c.MaxBatchSize > hardBatchCap {
		return fmt.Errorf("max_batch_size must not exceed %d, got %d", hardBatchCap, c.MaxBatchSize)
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample_size must be positive, got %d", c.SampleSize)
	}
	if c.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("max_consecutive_failures must be positive, got %d", c.MaxConsecutiveFailures)
	}
	if c.FlushEvery < 0 {
		return fmt.Errorf("flush_every must not be negative, got %d", c.FlushEvery)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if len([]rune(c.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return nil
}

// DelimiterRune returns the configured delimiter as a rune. Callers must
// have validated the config first.
func (c *Config) DelimiterRune() rune {
	return []rune(c.Delimiter)[0]
}

// GetConfig returns the global configuration.
func GetConfig() *Config {
	return globalConfig
}

// SetConfig sets the global configuration.
func SetConfig(cfg *Config) {
	globalConfig = cfg
}
