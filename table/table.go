// Package table holds tabular query results: named columns and rows of
// string cells.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Errors.
var (
	ErrColumnMismatch = errors.New("row does not match columns")
	ErrUnknownColumn  = errors.New("unknown column")
)

// Table is a tabular result.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{
		Columns: columns,
	}
}

// FromMaps builds a table from rows of named fields. If no columns are
// given, the sorted union of all field names is used. Missing fields are
// left empty.
func FromMaps(rows []map[string]string, columns ...string) *Table {
	if len(columns) == 0 {
		names := make(map[string]struct{})
		for _, row := range rows {
			for name := range row {
				names[name] = struct{}{}
			}
		}
		columns = maps.Keys(names)
		slices.Sort(columns)
	}

	t := New(columns...)
	for _, row := range rows {
		values := make([]string, len(columns))
		for i, column := range columns {
			values[i] = row[column]
		}
		t.Rows = append(t.Rows, values)
	}
	return t
}

// Append adds a row.
func (t *Table) Append(values ...string) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrColumnMismatch, len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, values)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the index of the named column.
func (t *Table) Index(column string) (int, error) {
	i := slices.Index(t.Columns, column)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	return i, nil
}

// Column returns all values of the named column.
func (t *Table) Column(column string) ([]string, error) {
	i, err := t.Index(column)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row[i])
	}
	return values, nil
}

// Records returns every row as a map of column name to value.
func (t *Table) Records() []map[string]string {
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]string, len(t.Columns))
		for i, column := range t.Columns {
			record[column] = row[i]
		}
		records = append(records, record)
	}
	return records
}

// SortBy sorts the rows by the named column. The sort is stable.
func (t *Table) SortBy(column string) error {
	i, err := t.Index(column)
	if err != nil {
		return err
	}
	slices.SortStableFunc(t.Rows, func(a, b []string) int {
		return strings.Compare(a[i], b[i])
	})
	return nil
}

// WriteCSV writes the table including a header line.
func (t *Table) WriteCSV(w io.Writer) error {
	return t.write(csv.NewWriter(w))
}

// WriteTSV writes the table including a header line, separated by tabs.
func (t *Table) WriteTSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	return t.write(writer)
}

func (t *Table) write(writer *csv.Writer) error {
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// ReadDelimited reads rows of delimited fields, as found in database dump
// tables. Lines are split on sep without quote handling. Blank lines are
// skipped.
func ReadDelimited(r io.Reader, sep string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, sep))
	}
	return rows, nil
}
