// Package postgres exposes a PostgreSQL table or view of boolean columns as
// a miner.TabularSource.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/blackwell-systems/ruleminer/internal/miner"
	"github.com/blackwell-systems/ruleminer/internal/store"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/ruleminer?sslmode=disable"

	// queryTimeout bounds each metadata or count query.
	queryTimeout = 30 * time.Second

	// matchPredicate treats NULL as absent.
	matchPredicate = "%s IS TRUE"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Source reads item presence from one PostgreSQL relation. Column names and
// the row count are read once by Open.
type Source struct {
	db      *sql.DB
	schema  string
	table   string
	columns []string
	rows    int
}

var _ miner.TabularSource = (*Source)(nil)

// Open connects to dsn (falls back to defaultDSN) and reads the metadata of
// table in schema ("public" when empty). Every boolean column of the
// relation becomes an item; other columns are ignored.
func Open(dsn, schema, table string) (*Source, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	if schema == "" {
		schema = "public"
	}

	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	src := &Source{db: db, schema: schema, table: table}
	if err := src.load(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return src, nil
}

func (s *Source) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2 AND data_type = 'boolean'
		ORDER BY ordinal_position
	`, s.schema, s.table)
	if err != nil {
		return fmt.Errorf("read columns of %s: %w", s.relation(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return fmt.Errorf("scan column of %s: %w", s.relation(), err)
		}
		s.columns = append(s.columns, col)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate columns of %s: %w", s.relation(), err)
	}
	if len(s.columns) == 0 {
		return fmt.Errorf("%w: %s has no boolean columns", store.ErrTableNotFound, s.relation())
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.qualified()).Scan(&s.rows); err != nil {
		return fmt.Errorf("count rows of %s: %w", s.relation(), err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Source) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ColumnNames returns the boolean columns in ordinal order.
func (s *Source) ColumnNames() []string {
	return append([]string(nil), s.columns...)
}

// RowCount returns the row count read by Open.
func (s *Source) RowCount() int {
	return s.rows
}

// RowMatches counts the rows where every named column IS TRUE.
func (s *Source) RowMatches(items []string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var count int
	if err := s.db.QueryRowContext(ctx, store.BuildMatchQuery(s.qualified(), items, matchPredicate)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count matches in %s: %w", s.relation(), err)
	}
	return count, nil
}

// Values reads every row of the item columns. NULL cells are returned as nil.
func (s *Source) Values() ([][]any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	cols := make([]string, len(s.columns))
	for i, c := range s.columns {
		cols[i] = store.QuoteIdent(c)
	}
	query := "SELECT " + strings.Join(cols, ", ") + " FROM " + s.qualified()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", s.relation(), err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		row := make([]any, len(s.columns))
		ptrs := make([]any, len(row))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row of %s: %w", s.relation(), err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows of %s: %w", s.relation(), err)
	}
	return out, nil
}

func (s *Source) relation() string {
	return s.schema + "." + s.table
}

func (s *Source) qualified() string {
	return store.QuoteIdent(s.schema) + "." + store.QuoteIdent(s.table)
}
