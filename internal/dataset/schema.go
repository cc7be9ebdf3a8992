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
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnType is the inferred primitive type of a column.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeNumber  ColumnType = "number"
	TypeBoolean ColumnType = "boolean"
)

// maxExamplesPerColumn bounds how many sampled values are kept per column.
const maxExamplesPerColumn = 5

// Column describes a single column of the source table.
type Column struct {
	Name     string
	Type     ColumnType
	Examples []string
}

// Schema is the ordered column descriptor of a tabular dataset. It is
// built once from the source table and never mutated afterwards.
type Schema struct {
	Columns []Column
}

// ErrSchema represents a malformed input table (empty or duplicate header).
type ErrSchema struct {
	Msg string
}

func (e *ErrSchema) Error() string {
	return fmt.Sprintf("schema error: %s", e.Msg)
}

var booleanTokens = map[string]bool{
	"true": true, "false": true,
	"yes": true, "no": true,
	"0": true, "1": true,
}

// InferSchema builds a Schema from a header row and sampled data rows.
// Type inference tries numeric first, then the boolean token set, and
// falls back to string. Empty values are ignored during inference.
func InferSchema(header []string, sample [][]string) (*Schema, error) {
	if len(header) == 0 {
		return nil, &ErrSchema{Msg: "header row is empty"}
	}

	seen := make(map[string]bool, len(header))
	for _, name := range header {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, &ErrSchema{Msg: "header contains an empty column name"}
		}
		if seen[trimmed] {
			return nil, &ErrSchema{Msg: fmt.Sprintf("duplicate column name: %s", trimmed)}
		}
		seen[trimmed] = true
	}

	columns := make([]Column, len(header))
	for i, name := range header {
		values := make([]string, 0, len(sample))
		for _, row := range sample {
			if i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v != "" {
				values = append(values, v)
			}
		}

		examples := values
		if len(examples) > maxExamplesPerColumn {
			examples = examples[len(examples)-maxExamplesPerColumn:]
		}

		columns[i] = Column{
			Name:     strings.TrimSpace(name),
			Type:     inferType(values),
			Examples: examples,
		}
	}

	return &Schema{Columns: columns}, nil
}

// ColumnNames returns the ordered column names.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.Columns)
}

// Coerce verifies that value is compatible with the column type. The value
// is returned trimmed; an error means the field cannot belong to the column.
func (c Column) Coerce(value string) (string, error) {
	v := strings.TrimSpace(value)
	switch c.Type {
	case TypeNumber:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "", fmt.Errorf("value %q is not numeric for column %s", v, c.Name)
		}
	case TypeBoolean:
		if !booleanTokens[strings.ToLower(v)] {
			return "", fmt.Errorf("value %q is not boolean for column %s", v, c.Name)
		}
	}
	return v, nil
}

func inferType(values []string) ColumnType {
	if len(values) == 0 {
		return TypeString
	}

	allNumeric := true
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		return TypeNumber
	}

	allBoolean := true
	for _, v := range values {
		if !booleanTokens[strings.ToLower(v)] {
			allBoolean = false
			break
		}
	}
	if allBoolean {
		return TypeBoolean
	}

	return TypeString
}
