// Package tabular loads spreadsheets and delimited text files whose
// column names, encodings and layouts drift release to release, and
// infers which columns play which role.
package tabular

import (
	"fmt"

	"inteligente-backend/lib/textutil"
)

// Table is an ordered set of named columns over raw cells. Delimited
// sources produce string cells; spreadsheet sources keep native numbers
// as float64 so fractional values survive until parsing. Column names
// are already normalized and de-duplicated by the loader; rows may be
// ragged in the source file but are padded to the header width here.
type Table struct {
	Columns []string
	Rows    [][]any
}

func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0 || len(t.Columns) == 0
}

// ColumnIndex returns the position of a normalized column name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) Cell(row, col int) any {
	if col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][col]
}

// newTable builds a Table from raw records: the first record is the
// header, every following record is padded or truncated to its width.
// convert maps each raw cell to its stored form.
func newTable(records [][]string, convert func(string) any) *Table {
	if len(records) == 0 {
		return &Table{}
	}
	columns := normalizeColumns(records[0])

	rows := make([][]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]any, len(columns))
		for i := range row {
			if i < len(rec) {
				row[i] = convert(rec[i])
			} else {
				row[i] = ""
			}
		}
		rows = append(rows, row)
	}
	return &Table{Columns: columns, Rows: rows}
}

// normalizeColumns applies the shared key convention (accents stripped,
// lowercased, non-alphanumeric runs collapsed to "_") and de-duplicates
// repeats with numeric suffixes. Unnamed columns become "coluna".
func normalizeColumns(header []string) []string {
	used := map[string]int{}
	columns := make([]string, 0, len(header))
	for _, raw := range header {
		base := textutil.NormalizeKey(raw)
		if base == "" {
			base = "coluna"
		}
		n, seen := used[base]
		if !seen {
			used[base] = 1
			columns = append(columns, base)
			continue
		}
		used[base] = n + 1
		columns = append(columns, fmt.Sprintf("%s_%d", base, n))
	}
	return columns
}
