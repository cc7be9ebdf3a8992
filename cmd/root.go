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
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dataset-tools/dataset-expander/internal/config"
)

var (
	configFile   string
	geminiAPIKey string
	model        string
	verbose      bool

	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "dataset-expander",
	Short: "A tool to expand tabular datasets with generated rows",
	Long: `dataset-expander reads a delimited tabular file and uses a generative
model to synthesize additional rows that are consistent with the original
data, until a target row count is reached.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfigAndLogger,
}

// initConfigAndLogger loads configuration and constructs the logger before
// any subcommand runs. Flag values override config file and environment.
func initConfigAndLogger(cmd *cobra.Command, args []string) error {
	var err error
	logger, err = newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if geminiAPIKey != "" {
		cfg.GeminiAPIKey = geminiAPIKey
	}
	if model != "" {
		cfg.Model = model
	}

	config.SetConfig(cfg)
	return nil
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (defaults to ./dataset-expander.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&geminiAPIKey, "api-key", "", "Gemini API key (can also be set via GEMINI_API_KEY environment variable)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model to use for analysis and row generation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(inspectCmd)
}
