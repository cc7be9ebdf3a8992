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
	"encoding/csv"
	"strings"

	"github.com/dataset-tools/dataset-expander/internal/dataset"
)

// ParseRows extracts candidate rows from raw generation output. Model
// output is unreliable free text, so malformed entries are dropped and
// counted, never treated as an error: entries with the wrong field count
// or a field that fails type coercion are rejected whole.
func ParseRows(text string, schema *dataset.Schema) (rows []dataset.Row, rejected int) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isNoise(line) {
			continue
		}

		reader := csv.NewReader(strings.NewReader(line))
		reader.TrimLeadingSpace = true
		record, err := reader.Read()
		if err != nil {
			rejected++
			continue
		}

		if len(record) != schema.Len() {
			rejected++
			continue
		}

		row := make(dataset.Row, len(record))
		ok := true
		for i, field := range record {
			coerced, coerceErr := schema.Columns[i].Coerce(field)
			if coerceErr != nil {
				ok = false
				break
			}
			row[i] = coerced
		}
		if !ok {
			rejected++
			continue
		}

		// A line identical to the header is commentary, not data.
		if schema.Len() > 0 && row.Equal(dataset.Row(schema.ColumnNames())) {
			rejected++
			continue
		}

		rows = append(rows, row)
	}
	return rows, rejected
}

// isNoise filters decoration the model emits despite instructions, such as
// markdown code fences.
func isNoise(line string) bool {
	return strings.HasPrefix(line, "```")
}
