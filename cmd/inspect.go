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
	"strings"

	"github.com/spf13/cobra"

	"github.com/dataset-tools/dataset-expander/internal/config"
	"github.com/dataset-tools/dataset-expander/internal/dataset"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Short:   "Show the inferred schema of a delimited file",
	Long:    `Reads the file, infers column types from sampled values, and prints the schema the expander would use.`,
	Example: `./dataset-expander inspect --file ./people.csv`,
	RunE:    runInspect,
}

var inspectFile string

func runInspect(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if cfg == nil {
		return fmt.Errorf("config is not initialized")
	}
	if inspectFile == "" {
		return fmt.Errorf("--file is required")
	}

	ds, err := dataset.ReadFile(inspectFile, cfg.DelimiterRune())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File: %s\n", inspectFile)
	fmt.Fprintf(out, "Rows: %d\n", ds.Len())
	fmt.Fprintf(out, "Columns:\n")
	for _, col := range ds.Schema.Columns {
		examples := ""
		if len(col.Examples) > 0 {
			examples = " (e.g. " + strings.Join(col.Examples, ", ") + ")"
		}
		fmt.Fprintf(out, "  %-20s %s%s\n", col.Name, col.Type, examples)
	}
	return nil
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFile, "file", "f", "", "Path to the delimited file to inspect")
}
