// Package loader implements the CSV validation, canonicalization and
// snapshot-merge engine for broker position and execution files.
//
// Processing is two-phase: a file is read into a raw string table, every
// validation stage runs over it in place, and only a fully clean table is
// converted into typed rows for the store. Any stage failing aborts the
// whole load.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	errs "trading-backoffice/internal/errors"
)

// Row is one raw CSV row: column name to cell text.
type Row map[string]string

// Table is a raw CSV file in memory.
type Table struct {
	Columns []string
	Rows    []Row
}

// identifierColumns are upper-cased during normalization. Date and numeric
// columns stay as trimmed text for the later stages to parse.
var identifierColumns = []string{
	"Broker_Id",
	"Sheet",
	"Strategy",
	"Exchange",
	"Instrument",
	"Symbol",
	"Opt_Type",
}

// ReadCSV reads a UTF-8 CSV file with a header row into a Table. All cells
// are kept as raw text.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "failed to read CSV")
	}
	defer f.Close()

	t, err := readCSV(f)
	if err != nil {
		return nil, errs.Wrap(err, "failed to read CSV")
	}
	return t, nil
}

func readCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty, header row required")
	}
	if err != nil {
		return nil, err
	}

	t := &Table{Columns: header}
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = fields[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// RequireColumns fails with a SchemaError listing the missing column names,
// sorted, when any required column is absent.
func (t *Table) RequireColumns(required []string) error {
	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}

	var missing []string
	for _, c := range required {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errs.NewSchemaError(missing)
	}
	return nil
}

// Normalize trims whitespace on every cell and upper-cases the identifier
// columns.
func (t *Table) Normalize() {
	upper := make(map[string]bool, len(identifierColumns))
	for _, c := range identifierColumns {
		upper[c] = true
	}

	for _, row := range t.Rows {
		for col, v := range row {
			v = strings.TrimSpace(v)
			if upper[col] {
				v = strings.ToUpper(v)
			}
			row[col] = v
		}
	}
}

// distinct returns the column's distinct values in first-seen order.
func (t *Table) distinct(col string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range t.Rows {
		v := row[col]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// isNullString reports whether v is one of the recognized null tokens
// brokers emit for missing values.
func isNullString(v string) bool {
	switch strings.ToLower(v) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}
