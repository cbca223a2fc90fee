// Package dataset reads and writes the delimited flat files the pipeline
// moves between stages: tab-separated raw extracts in, comma-separated
// cleaned files out.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Table is an in-memory delimited file: a header and rows of strings.
// Column order is preserved from the source.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

func New(columns []string) *Table {
	t := &Table{Columns: columns}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

// ReadFile loads a delimited file. Pass '\t' for the raw extracts and
// ',' for cleaned files. A missing file surfaces as the os.Open error.
func ReadFile(path string, delim rune) (*Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}

	t := New(records[0])
	for _, row := range records[1:] {
		// Short rows happen when trailing fields are empty; pad them so
		// column access stays uniform.
		if len(row) < len(t.Columns) {
			padded := make([]string, len(t.Columns))
			copy(padded, row)
			row = padded
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Get returns the named field of a row, or "" when the column is absent.
func (t *Table) Get(row []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Append adds a row; it must match the column count.
func (t *Table) Append(row []string) {
	t.Rows = append(t.Rows, row)
}

// Rename maps column names through the given mapping, leaving unmapped
// columns untouched.
func (t *Table) Rename(mapping map[string]string) {
	for i, c := range t.Columns {
		if short, ok := mapping[c]; ok {
			t.Columns[i] = short
		}
	}
	t.reindex()
}

// Select returns a new table restricted to the named columns, skipping
// any that the table does not have, in the order given.
func (t *Table) Select(names []string) *Table {
	var kept []string
	var src []int
	for _, n := range names {
		if i, ok := t.index[n]; ok {
			kept = append(kept, n)
			src = append(src, i)
		}
	}
	out := New(kept)
	for _, row := range t.Rows {
		projected := make([]string, len(src))
		for j, i := range src {
			if i < len(row) {
				projected[j] = row[i]
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// WriteCSV writes the table as a comma-separated file with a header row,
// creating parent directories as needed.
func (t *Table) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
