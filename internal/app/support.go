package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ruleminer/internal/miner"
)

var supportCmd = &cobra.Command{
	Use:   "support ITEM...",
	Short: "Compute the support of an itemset",
	Long: `Count the rows in which every given item is present.

With --relative (the default) the count is divided by the number of rows.
Naming a column that does not exist in the table is an error.`,
	Example: `  ruleminer support --table baskets bread milk
  ruleminer support --table baskets --relative=false eggs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSupport,
}

func runSupport(cmd *cobra.Command, args []string) error {
	src, err := openSource()
	if err != nil {
		return err
	}
	defer src.Close()

	m, err := newMiner()
	if err != nil {
		return err
	}

	items := miner.Itemset(args)
	sup, err := m.Support(src, items)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "support(%s) = %s\n",
		items, formatThreshold(sup, m.Config().RelativeSupport))
	return nil
}
