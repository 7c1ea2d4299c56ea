// Package dataset provides in-memory TabularSource implementations for the
// miner: a boolean Table and an LRU-cached wrapper around any source.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blackwell-systems/ruleminer/internal/miner"
)

var (
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrEmptyColumnName is returned for a blank column name.
	ErrEmptyColumnName = errors.New("empty column name")

	// ErrRaggedRow is returned when a row's width differs from the header.
	ErrRaggedRow = errors.New("row width does not match column count")

	// ErrNotBoolean is returned by FromValues for a cell that cannot be read
	// as present/absent.
	ErrNotBoolean = errors.New("cell is not boolean-coercible")
)

// Table is an immutable boolean item-presence table. Columns are items and
// rows are transactions.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]bool
}

// Compile-time check that Table satisfies the miner's source contract.
var _ miner.TabularSource = (*Table)(nil)

// New builds a Table. Column names must be unique and non-empty, and every
// row must have one cell per column. Rows are copied.
func New(columns []string, rows [][]bool) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("%w at position %d", ErrEmptyColumnName, i)
		}
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		index[c] = i
	}

	copied := make([][]bool, len(rows))
	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedRow, r, len(row), len(columns))
		}
		copied[r] = append([]bool(nil), row...)
	}

	cols := append([]string(nil), columns...)
	return &Table{columns: cols, index: index, rows: copied}, nil
}

// MustNew is New for fixtures; it panics on error.
func MustNew(columns []string, rows [][]bool) *Table {
	t, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// FromValues builds a Table from boolean-coercible cells. See Truthy.
func FromValues(columns []string, rows [][]any) (*Table, error) {
	bools := make([][]bool, len(rows))
	for r, row := range rows {
		bools[r] = make([]bool, len(row))
		for c, v := range row {
			b, err := Truthy(v)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", r, c, err)
			}
			bools[r][c] = b
		}
	}
	return New(columns, bools)
}

// Truthy reads a cell as present/absent. Booleans are taken as-is, numbers
// are present when non-zero, nil is absent, and strings are parsed with
// strconv.ParseBool (an empty string is absent).
func Truthy(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case int:
		return x != 0, nil
	case int8:
		return x != 0, nil
	case int16:
		return x != 0, nil
	case int32:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case uint:
		return x != 0, nil
	case uint8:
		return x != 0, nil
	case uint16:
		return x != 0, nil
	case uint32:
		return x != 0, nil
	case uint64:
		return x != 0, nil
	case float32:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("%w: %q", ErrNotBoolean, x)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: %T", ErrNotBoolean, v)
	}
}

// ColumnNames returns a copy of the column names in table order.
func (t *Table) ColumnNames() []string {
	return append([]string(nil), t.columns...)
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// RowMatches counts the rows where every named column is true.
func (t *Table) RowMatches(items []string) (int, error) {
	idx := make([]int, len(items))
	for i, it := range items {
		c, ok := t.index[it]
		if !ok {
			return 0, fmt.Errorf("%w: %q", miner.ErrUnknownColumn, it)
		}
		idx[i] = c
	}

	count := 0
	for _, row := range t.rows {
		if rowContains(row, idx) {
			count++
		}
	}
	return count, nil
}

// Value reports whether column holds in row r.
func (t *Table) Value(r int, column string) (bool, error) {
	c, ok := t.index[column]
	if !ok {
		return false, fmt.Errorf("%w: %q", miner.ErrUnknownColumn, column)
	}
	if r < 0 || r >= len(t.rows) {
		return false, fmt.Errorf("row %d out of range [0, %d)", r, len(t.rows))
	}
	return t.rows[r][c], nil
}

func rowContains(row []bool, idx []int) bool {
	for _, c := range idx {
		if !row[c] {
			return false
		}
	}
	return true
}
