package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ruleminer/internal/output"
)

var rulesSave bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show association rules",
	Long: `Mine association rules from the last level of frequent itemsets.

Every frequent itemset is split into all non-empty left/right partitions. A
rule is reported when the itemset still meets the support threshold and
support(itemset) / support(left side) meets the confidence threshold.

With --save the run (thresholds, frequent itemsets and rules) is recorded in
the SQLite database and can be listed later with 'ruleminer history'.`,
	Example: `  # Rules with at least 70% confidence
  ruleminer rules --table baskets

  # Stricter rules, saved
  ruleminer rules --table baskets --confidence 0.9 --save`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesSave, "save", false, "save the run to the database")
}

func runRules(cmd *cobra.Command, args []string) error {
	src, err := openSource()
	if err != nil {
		return err
	}
	defer src.Close()

	spinner := output.NewSpinner("Mining association rules").WithTimeout(0)
	spinner.SetWriter(cmd.ErrOrStderr())

	m, err := newMiner(output.NewSearchReporter(spinner, src.name))
	if err != nil {
		return err
	}

	spinner.Start()
	res, err := mineRun(m, src)
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithMessage(fmt.Sprintf("Mined %d rules from %d frequent itemsets",
		len(res.Rules), len(res.Itemsets)))

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderRuleTable(res.Rules, res.Run.RelativeSupport))

	if !rulesSave {
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.SaveRun(res); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Fprintf(out, "\n%s\n", output.RenderRunSummary(&res.Run))
	return nil
}
