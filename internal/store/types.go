package store

import (
	"time"

	"github.com/blackwell-systems/ruleminer/internal/miner"
)

// Run is one persisted mining invocation.
type Run struct {
	ID                  string
	CreatedAt           time.Time
	Source              string // table or view the run mined
	SupportThreshold    float64
	ConfidenceThreshold float64
	RelativeSupport     bool
	RowCount            int
	ItemsetCount        int
	RuleCount           int
}

// RunResult is a Run together with the frontier and rules it produced.
type RunResult struct {
	Run      Run
	Itemsets []miner.ScoredItemset
	Rules    []miner.Rule
}
