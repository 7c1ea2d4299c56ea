package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/blackwell-systems/ruleminer/internal/miner"
)

// TableView exposes a SQLite table or view of 0/1 columns as a
// miner.TabularSource. Column names and the row count are read once when
// the view is opened; build a new view after the table changes.
type TableView struct {
	db      *sql.DB
	name    string
	columns []string
	rows    int
}

var _ miner.TabularSource = (*TableView)(nil)

// Table opens a view over the named table. Every column is treated as an
// item; a cell is present when it is non-NULL and non-zero.
func (s *Store) Table(name string) (*TableView, error) {
	var found string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?", name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up table %s: %w", name, err)
	}

	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			col     string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", name, err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", name, err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + QuoteIdent(name)).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", name, err)
	}

	return &TableView{db: s.db, name: name, columns: columns, rows: count}, nil
}

// Name returns the table name.
func (v *TableView) Name() string {
	return v.name
}

// ColumnNames returns the table's columns in declaration order.
func (v *TableView) ColumnNames() []string {
	return append([]string(nil), v.columns...)
}

// RowCount returns the row count read when the view was opened.
func (v *TableView) RowCount() int {
	return v.rows
}

// RowMatches counts rows where every named column is non-zero.
func (v *TableView) RowMatches(items []string) (int, error) {
	query := BuildMatchQuery(QuoteIdent(v.name), items, "%s <> 0")

	var count int
	if err := v.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches in %s: %w", v.name, err)
	}
	return count, nil
}

// WriteTable creates (or replaces) a table of INTEGER 0/1 columns and fills
// it with rows. It stores an already-boolean table; it does not encode raw
// transactions.
func (s *Store) WriteTable(name string, columns []string, rows [][]bool) error {
	if len(columns) == 0 {
		return fmt.Errorf("table %s needs at least one column", name)
	}

	defs := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = QuoteIdent(c) + " INTEGER NOT NULL DEFAULT 0"
		marks[i] = "?"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + QuoteIdent(name)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", name, err)
	}
	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(name), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	insert, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", QuoteIdent(name), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", name, err)
	}
	defer insert.Close()

	for r, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d has %d cells, want %d", r, len(row), len(columns))
		}
		args := make([]any, len(row))
		for i, cell := range row {
			if cell {
				args[i] = 1
			} else {
				args[i] = 0
			}
		}
		if _, err := insert.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row %d into %s: %w", r, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", name, err)
	}
	return nil
}

// QuoteIdent quotes a SQL identifier, doubling embedded quotes. It is valid
// for both SQLite and PostgreSQL.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// BuildMatchQuery returns a COUNT(*) query over from, an already quoted
// relation, requiring predicate for every item. predicate is a format string
// receiving the quoted column, e.g. "%s <> 0" for SQLite integers or
// "%s IS TRUE" for PostgreSQL booleans.
func BuildMatchQuery(from string, items []string, predicate string) string {
	conds := make([]string, len(items))
	for i, it := range items {
		conds[i] = fmt.Sprintf(predicate, QuoteIdent(it))
	}

	query := "SELECT COUNT(*) FROM " + from
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return query
}
