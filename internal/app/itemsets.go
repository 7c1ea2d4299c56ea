package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ruleminer/internal/output"
)

var itemsetsAllLevels bool

var itemsetsCmd = &cobra.Command{
	Use:   "itemsets",
	Short: "Show frequent itemsets",
	Long: `Run the level-wise frequent itemset search and print the result.

By default only the last non-empty level is shown: once a larger level of
frequent itemsets exists, smaller ones are not reported. Use --all-levels to
print every level the search produced.`,
	Example: `  # Largest frequent itemsets with at least 40% support
  ruleminer itemsets --table baskets --support 0.4

  # Every level, with absolute row counts
  ruleminer itemsets --table baskets --relative=false --support 20 --all-levels`,
	Args: cobra.NoArgs,
	RunE: runItemsets,
}

func init() {
	itemsetsCmd.Flags().BoolVar(&itemsetsAllLevels, "all-levels", false, "show every level of frequent itemsets")
}

func runItemsets(cmd *cobra.Command, args []string) error {
	src, err := openSource()
	if err != nil {
		return err
	}
	defer src.Close()

	spinner := output.NewSpinner("Searching frequent itemsets").WithTimeout(0)
	spinner.SetWriter(cmd.ErrOrStderr())

	m, err := newMiner(output.NewSearchReporter(spinner, src.name))
	if err != nil {
		return err
	}

	spinner.Start()
	levels, err := m.Levels(src)
	if err != nil {
		spinner.Stop()
		return fmt.Errorf("frequent itemset search failed: %w", err)
	}
	spinner.StopWithMessage(fmt.Sprintf("Searched %d levels", len(levels)))

	relative := m.Config().RelativeSupport
	out := cmd.OutOrStdout()

	if itemsetsAllLevels {
		fmt.Fprint(out, output.RenderLevels(levels, relative))
		return nil
	}

	if len(levels) == 0 {
		fmt.Fprint(out, output.RenderItemsetTable(nil, relative))
		return nil
	}

	last := levels[len(levels)-1]
	fmt.Fprint(out, output.RenderItemsetTable(last.Survivors, relative))
	fmt.Fprintf(out, "\n%d frequent itemsets of size %d (support >= %s)\n",
		len(last.Survivors), last.Size, formatThreshold(m.Config().SupportThreshold, relative))
	return nil
}

// formatThreshold prints a support threshold the way tables print supports.
func formatThreshold(v float64, relative bool) string {
	if relative {
		return fmt.Sprintf("%.3f", v)
	}
	return fmt.Sprintf("%.0f", v)
}
