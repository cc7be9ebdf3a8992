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
package expander

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/dataset-tools/dataset-expander/internal/dataset"
)

// BuildPrompt constructs the generation request for one batch. It is a pure
// function of the schema, the few-shot example rows, the requested row
// count, and the optional analysis text produced up front.
func BuildPrompt(schema *dataset.Schema, examples []dataset.Row, n int, analysis string) string {
	var b strings.Builder

	b.WriteString("You generate new rows for a tabular dataset.\n\n")

	b.WriteString("**Columns (in this exact order):**\n")
	for _, col := range schema.Columns {
		fmt.Fprintf(&b, "- %s (%s)\n", col.Name, col.Type)
	}

	if analysis != "" {
		b.WriteString("\n**Dataset analysis:**\n")
		b.WriteString(strings.TrimSpace(analysis))
		b.WriteString("\n")
	}

	if len(examples) > 0 {
		b.WriteString("\n**Example rows (CSV, no header):**\n")
		b.WriteString(encodeRows(examples))
	}

	fmt.Fprintf(&b, `
**Instructions:**
1. Generate exactly %d new rows, statistically and stylistically consistent with the example rows.
2. Output CSV only: one row per line, %d comma-separated fields per row, in the column order above.
3. Do not repeat any example row.
4. Do NOT output a header, explanations, code fences, or any text besides the rows.
`, n, schema.Len())

	return b.String()
}

// BuildAnalysisPrompt constructs the one-time request that asks the service
// to describe the dataset before expansion begins. Additional context read
// from user-provided files is appended verbatim.
func BuildAnalysisPrompt(schema *dataset.Schema, sample []dataset.Row, additionalContext string) string {
	var b strings.Builder

	b.WriteString("Analyze this tabular dataset sample. Focus on what the data is, how it is formatted, what each column stands for, and what new rows should look like.\n\n")

	b.WriteString("Header: ")
	b.WriteString(strings.Join(schema.ColumnNames(), ","))
	b.WriteString("\n")
	b.WriteString(encodeRows(sample))

	if additionalContext != "" {
		b.WriteString("\nAdditional context:\n")
		b.WriteString(additionalContext)
	}

	return b.String()
}

// encodeRows serializes rows as CSV lines so the service can mirror the
// exact format it is expected to return.
func encodeRows(rows []dataset.Row) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		// Write on a bytes.Buffer cannot fail.
		_ = w.Write(row)
	}
	w.Flush()
	return buf.String()
}
