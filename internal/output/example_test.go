package output_test

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/ruleminer/internal/miner"
	"github.com/blackwell-systems/ruleminer/internal/output"
)

// Example showing how to render mined rules
func ExampleRenderRuleTable() {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	rules := []miner.Rule{
		{LHS: miner.Itemset{"bread"}, RHS: miner.Itemset{"milk"}, Support: 0.6, Confidence: 0.75},
	}
	fmt.Print(output.RenderRuleTable(rules, true))
}

// Example showing how to report search progress on a spinner
func ExampleSearchReporter() {
	spinner := output.NewSpinner("Mining association rules")
	spinner.Start()

	m, err := miner.New(miner.Config{SupportThreshold: 2},
		miner.WithObserver(output.NewSearchReporter(spinner, "baskets")))
	if err != nil {
		spinner.Stop()
		return
	}
	_ = m

	spinner.StopWithMessage("Mining complete")
}
