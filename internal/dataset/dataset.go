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

import "strings"

// Row is one record, field values aligned to the schema's column order.
type Row []string

// Key returns the exact-match identity of the row used for deduplication.
// Unit separator keeps fields that themselves contain commas unambiguous.
func (r Row) Key() string {
	return strings.Join(r, "\x1f")
}

// Equal reports whether two rows have identical field values.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Dataset is the ordered, growing collection of rows for one expansion run.
// It is owned by a single goroutine for the run's duration.
type Dataset struct {
	Schema *Schema
	Rows   []Row

	keys map[string]bool
}

// New creates a Dataset over the given schema and initial rows.
func New(schema *Schema, rows []Row) *Dataset {
	ds := &Dataset{
		Schema: schema,
		Rows:   make([]Row, 0, len(rows)),
		keys:   make(map[string]bool, len(rows)),
	}
	for _, row := range rows {
		ds.append(row)
	}
	return ds
}

// Len returns the current number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Contains reports whether an identical row is already present.
func (d *Dataset) Contains(row Row) bool {
	return d.keys[row.Key()]
}

// Append adds a row unless an identical one is already present. It returns
// true when the row was added.
func (d *Dataset) Append(row Row) bool {
	if d.Contains(row) {
		return false
	}
	d.append(row)
	return true
}

// Tail returns up to n of the most recently accepted rows, oldest first.
func (d *Dataset) Tail(n int) []Row {
	if n <= 0 || len(d.Rows) == 0 {
		return nil
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[len(d.Rows)-n:]
}

// Truncate drops rows beyond n. Used to trim overshoot from a final batch.
func (d *Dataset) Truncate(n int) {
	if n < 0 || n >= len(d.Rows) {
		return
	}
	for _, row := range d.Rows[n:] {
		delete(d.keys, row.Key())
	}
	d.Rows = d.Rows[:n]
}

func (d *Dataset) append(row Row) {
	d.Rows = append(d.Rows, row)
	d.keys[row.Key()] = true
}
