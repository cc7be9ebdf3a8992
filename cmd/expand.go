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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/dataset-tools/dataset-expander/internal/config"
	"github.com/dataset-tools/dataset-expander/internal/dataset"
	"github.com/dataset-tools/dataset-expander/internal/expander"
	"github.com/dataset-tools/dataset-expander/internal/genai"
	"github.com/dataset-tools/dataset-expander/internal/utils"
)

// expandCmd represents the expand command
var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Expand a delimited file to a target row count using generated rows",
	Long: `Reads the input file, infers its schema, and repeatedly asks the
generative model for new rows until the target count is reached. Accepted
rows are appended to the output file as batches complete, so an aborted run
still keeps its progress.`,
	Example: `./dataset-expander expand --file ./people.csv --rows 500 --batch-size 20`,
	RunE:    runExpand,
}

var (
	inputFile    string
	targetRows   int
	outputFile   string
	delimiter    string
	batchSize    int
	sampleSize   int
	maxFailures  int
	flushEvery   int
	skipAnalysis bool
	contextFiles string
)

func runExpand(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if cfg == nil {
		return fmt.Errorf("config is not initialized")
	}
	applyExpandFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Interactive fallbacks for the two mandatory inputs.
	if inputFile == "" {
		var err error
		inputFile, err = utils.PromptString(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter the path to your input file: ")
		if err != nil {
			return err
		}
	}
	if targetRows <= 0 {
		var err error
		targetRows, err = utils.PromptInt(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter the desired total number of rows: ")
		if err != nil {
			return err
		}
	}

	ds, err := dataset.ReadFile(inputFile, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	logger.Infow("loaded input file", "file", inputFile, "rows", ds.Len(), "columns", ds.Schema.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "Original dataset has %d rows.\n", ds.Len())

	additionalContext, err := utils.ReadContextFiles(contextFiles)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var client genai.Client
	if ds.Len() < targetRows {
		if cfg.GeminiAPIKey == "" {
			return fmt.Errorf("no API key configured: set GEMINI_API_KEY or pass --api-key")
		}
		client, err = genai.NewClient(ctx, genai.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.Model,
			Timeout: cfg.RequestTimeout,
		}, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.IsAPIKeyValid(ctx); err != nil {
			return fmt.Errorf("Gemini API key validation failed: %w", err)
		}
	}

	if outputFile == "" {
		outputFile = dataset.DefaultOutputPath(inputFile)
	}
	writer, err := dataset.NewWriter(outputFile, ds.Schema, cfg.DelimiterRune())
	if err != nil {
		return err
	}
	defer writer.Close()

	engine := expander.NewEngine(client, expander.Options{
		TargetRows:             targetRows,
		MaxBatchSize:           cfg.MaxBatchSize,
		SampleSize:             cfg.SampleSize,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		FlushEvery:             cfg.FlushEvery,
		SkipAnalysis:           skipAnalysis,
		AdditionalContext:      additionalContext,
		Retry:                  expander.DefaultRetryOptions,
	}, writer.Sync, logger)

	var spin *spinner.Spinner
	if !verbose && ds.Len() < targetRows {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " Expanding dataset, this can take a while..."
		spin.Start()
	}

	report, runErr := engine.Run(ctx, ds)
	if spin != nil {
		spin.Stop()
	}

	printReport(cmd, report, outputFile)
	return runErr
}

// applyExpandFlags lets explicitly set command flags override the loaded
// configuration.
func applyExpandFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("delimiter") {
		cfg.Delimiter = delimiter
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.MaxBatchSize = batchSize
	}
	if cmd.Flags().Changed("sample-size") {
		cfg.SampleSize = sampleSize
	}
	if cmd.Flags().Changed("max-failures") {
		cfg.MaxConsecutiveFailures = maxFailures
	}
	if cmd.Flags().Changed("flush-every") {
		cfg.FlushEvery = flushEvery
	}
}

func printReport(cmd *cobra.Command, report *expander.Report, outputFile string) {
	if report == nil {
		return
	}
	out := cmd.OutOrStdout()
	switch report.State {
	case expander.StateCompleted:
		fmt.Fprintf(out, "\nExpansion complete: %d rows added in %d batches (%d rejected, %d duplicates dropped).\n",
			report.RowsAdded, report.Batches, report.Rejected, report.Duplicates)
	case expander.StateAborted:
		fmt.Fprintf(out, "\nExpansion aborted: %s.\n", report.Reason)
		fmt.Fprintf(out, "Reached %d of %d requested rows; all accepted progress was kept.\n",
			report.FinalRows, report.TargetRows)
	}
	fmt.Fprintf(out, "Expanded dataset saved as '%s'\n", outputFile)
}

// IsPartial reports whether err marks a run that aborted after making
// progress, so callers can exit with a partial-success status.
func IsPartial(err error) bool {
	var partial *expander.ErrPartial
	var cancelled *expander.ErrCancelled
	return errors.As(err, &partial) || errors.As(err, &cancelled)
}

func init() {
	expandCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Path to the input delimited file (prompted for when omitted)")
	expandCmd.Flags().IntVarP(&targetRows, "rows", "r", 0, "Desired total row count of the output (prompted for when omitted)")
	expandCmd.Flags().StringVarP(&outputFile, "out_file", "o", "", "Output file path (defaults to expanded_<input name>)")
	expandCmd.Flags().StringVar(&delimiter, "delimiter", ",", "Field delimiter of the input and output files")
	expandCmd.Flags().IntVar(&batchSize, "batch-size", 20, "Maximum rows requested per generation call")
	expandCmd.Flags().IntVar(&sampleSize, "sample-size", 10, "Recent accepted rows included as few-shot context")
	expandCmd.Flags().IntVar(&maxFailures, "max-failures", 3, "Consecutive zero-yield batches tolerated before aborting")
	expandCmd.Flags().IntVar(&flushEvery, "flush-every", 1, "Write accepted rows to the output every N batches (0 = only at the end)")
	expandCmd.Flags().BoolVar(&skipAnalysis, "skip-analysis", false, "Skip the one-time dataset analysis call")
	expandCmd.Flags().StringVar(&contextFiles, "context", "", "Comma-separated list of context files folded into the analysis prompt")
}
