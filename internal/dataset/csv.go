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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// OutputPrefix is prepended to the source file's base name to form the
// default output file name.
const OutputPrefix = "expanded_"

// schemaSampleRows bounds how many data rows feed type inference.
const schemaSampleRows = 100

// ReadFile loads a delimited file, infers its schema, and returns the
// dataset of original rows. Rows whose field count does not match the
// header are rejected as malformed input.
func ReadFile(path string, delimiter rune) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse input file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, &ErrSchema{Msg: "input file has no header row"}
	}

	header := records[0]
	data := records[1:]

	sample := data
	if len(sample) > schemaSampleRows {
		sample = sample[:schemaSampleRows]
	}
	schema, err := InferSchema(header, sample)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(data))
	for _, record := range data {
		if len(record) != schema.Len() {
			return nil, &ErrSchema{Msg: fmt.Sprintf("row has %d fields, expected %d", len(record), schema.Len())}
		}
		rows = append(rows, Row(record))
	}

	return New(schema, rows), nil
}

// DefaultOutputPath derives the output file path from the input path by
// prefixing its base name.
func DefaultOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	return filepath.Join(dir, OutputPrefix+filepath.Base(inputPath))
}

// Writer persists rows to the output file incrementally so a crash
// mid-run does not lose accepted progress.
type Writer struct {
	file    *os.File
	csv     *csv.Writer
	written int
}

// NewWriter creates (truncating) the output file and writes the header.
func NewWriter(path string, schema *Schema, delimiter rune) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := &Writer{file: f}
	w.csv = csv.NewWriter(f)
	w.csv.Comma = delimiter

	if err := w.csv.Write(schema.ColumnNames()); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return w, nil
}

// Sync writes any dataset rows not yet persisted and flushes to disk.
func (w *Writer) Sync(ds *Dataset) error {
	if w.written > ds.Len() {
		return fmt.Errorf("dataset has %d rows but %d were already persisted", ds.Len(), w.written)
	}
	for _, row := range ds.Rows[w.written:] {
		if err := w.csv.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.written = ds.Len()
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Written returns the number of data rows persisted so far.
func (w *Writer) Written() int {
	return w.written
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
