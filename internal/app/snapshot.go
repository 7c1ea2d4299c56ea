package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ruleminer/internal/config"
	"github.com/blackwell-systems/ruleminer/internal/snapshots"
)

var (
	snapshotDir      string
	exportCleanupAge time.Duration

	exportCmd = &cobra.Command{
		Use:   "export RUN_ID",
		Short: "Export a saved run to a JSON snapshot",
		Long: `Write a saved run (thresholds, frequent itemsets and rules) to
<dir>/<RUN_ID>.json so it can be shared or imported into another database.

With --cleanup, snapshot files older than the given age are removed first.`,
		Example: `  ruleminer export 0b6f3f9e-1111-4a4a-9c9c-000000000001
  ruleminer export 0b6f3f9e-1111-4a4a-9c9c-000000000001 --dir ./snapshots --cleanup 2160h`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}

	importCmd = &cobra.Command{
		Use:   "import FILE",
		Short: "Import a run from a JSON snapshot",
		Long: `Save the run recorded in a snapshot file into the database, keeping
its original ID. Importing a run that already exists is an error.`,
		Example: `  ruleminer import ~/.ruleminer/snapshots/0b6f3f9e-1111-4a4a-9c9c-000000000001.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runImport,
	}
)

func init() {
	exportCmd.Flags().StringVar(&snapshotDir, "dir", "", "snapshot directory (default: ~/.ruleminer/snapshots)")
	exportCmd.Flags().DurationVar(&exportCleanupAge, "cleanup", 0, "remove snapshots older than this age before exporting")

	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(importCmd)
}

// getSnapshotDir returns the directory for snapshot storage.
func getSnapshotDir() (string, error) {
	if snapshotDir != "" {
		return snapshotDir, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshots"), nil
}

func runExport(cmd *cobra.Command, args []string) error {
	dir, err := getSnapshotDir()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m := snapshots.New(st, dir)
	out := cmd.OutOrStdout()

	if exportCleanupAge > 0 {
		n, err := m.CleanupOldSnapshots(exportCleanupAge)
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Fprintf(out, "Removed %d old snapshots\n", n)
		}
	}

	path, err := m.CreateSnapshot(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported run %s to %s\n", args[0], path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := snapshots.New(st, filepath.Dir(args[0])).RestoreSnapshot(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported run %s\n", id)
	return nil
}
