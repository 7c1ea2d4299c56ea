package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ruleminer/internal/dataset"
	"github.com/blackwell-systems/ruleminer/internal/store"
	"github.com/blackwell-systems/ruleminer/internal/store/postgres"
)

var pullAs string

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Copy a PostgreSQL table into the SQLite database",
	Long: `Read the boolean columns of a PostgreSQL table and store them as a
local SQLite table of 0/1 columns. NULL cells are stored as absent.

The local copy can then be mined or watched without a database server. An
existing local table with the same name is replaced.`,
	Example: `  # Copy public.baskets into ~/.ruleminer/ruleminer.db
  ruleminer pull --dsn postgres://localhost/shop --table baskets

  # Copy a schema-qualified table under another name
  ruleminer pull --dsn postgres://localhost/shop --table sales.baskets --as baskets_2026`,
	Args: cobra.NoArgs,
	RunE: runPull,
}

func init() {
	pullCmd.Flags().StringVar(&pullAs, "as", "", "local table name (default: the table name without schema)")

	RootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	if settings.DSN == "" {
		return fmt.Errorf("pull requires --dsn or RULEMINER_DSN")
	}
	if settings.Table == "" {
		return fmt.Errorf("no table specified: use --table or set RULEMINER_TABLE")
	}

	schema, table := splitQualified(settings.Table)
	name := pullAs
	if name == "" {
		name = table
	}

	src, err := postgres.Open(settings.DSN, schema, table)
	if err != nil {
		return err
	}
	defer src.Close()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := copyTable(src, st, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Copied %s rows of %s into %s\n",
		humanize.Comma(int64(n)), settings.Table, name)
	return nil
}

// valueSource is a table whose cells are read as raw driver values.
type valueSource interface {
	ColumnNames() []string
	Values() ([][]any, error)
}

// copyTable converts every cell of src to present/absent and writes the
// result to the local table name. It returns the number of rows written.
func copyTable(src valueSource, st *store.Store, name string) (int, error) {
	columns := src.ColumnNames()
	values, err := src.Values()
	if err != nil {
		return 0, err
	}

	tbl, err := dataset.FromValues(columns, values)
	if err != nil {
		return 0, fmt.Errorf("failed to convert %s: %w", name, err)
	}

	rows := make([][]bool, tbl.RowCount())
	for r := range rows {
		rows[r] = make([]bool, len(columns))
		for c, col := range columns {
			if rows[r][c], err = tbl.Value(r, col); err != nil {
				return 0, err
			}
		}
	}

	if err := st.WriteTable(name, columns, rows); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return len(rows), nil
}
