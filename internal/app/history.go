package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ruleminer/internal/output"
	"github.com/blackwell-systems/ruleminer/internal/store"
)

var (
	historyLimit  int
	historyDelete bool
)

var historyCmd = &cobra.Command{
	Use:   "history [RUN_ID]",
	Short: "List saved mining runs",
	Long: `Without arguments, list saved runs newest first.

With a run ID, show that run's frequent itemsets and rules. Add --delete to
remove the run instead.`,
	Example: `  ruleminer history
  ruleminer history --limit 5
  ruleminer history 0b6f3f9e-1111-4a4a-9c9c-000000000001
  ruleminer history 0b6f3f9e-1111-4a4a-9c9c-000000000001 --delete`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyDelete, "delete", false, "delete the given run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("invalid limit: %d (must be >= 0)", historyLimit)
	}
	if historyDelete && len(args) == 0 {
		return fmt.Errorf("--delete requires a run ID")
	}

	dbPath, err := getDBPath()
	if err != nil {
		return err
	}
	if err := requireDB(dbPath); err != nil {
		return err
	}

	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if len(args) == 0 {
		runs, err := st.ListRuns(historyLimit)
		if err != nil {
			if errors.Is(err, store.ErrNotInitialized) {
				fmt.Fprint(out, output.RenderRunTable(nil))
				return nil
			}
			return err
		}
		fmt.Fprint(out, output.RenderRunTable(runs))
		return nil
	}

	id := args[0]
	if historyDelete {
		if err := st.DeleteRun(id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted run %s\n", id)
		return nil
	}

	run, err := st.GetRun(id)
	if err != nil {
		return err
	}
	itemsets, err := st.GetRunItemsets(id)
	if err != nil {
		return err
	}
	rules, err := st.GetRunRules(id)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, output.RenderRunSummary(run))
	fmt.Fprintln(out)
	fmt.Fprint(out, output.RenderItemsetTable(itemsets, run.RelativeSupport))
	fmt.Fprintln(out)
	fmt.Fprint(out, output.RenderRuleTable(rules, run.RelativeSupport))
	return nil
}
