package miner

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

// TabularSource is the read-only view of a boolean table the miner needs.
// Each column is an item and each row a transaction.
type TabularSource interface {
	// ColumnNames returns the unique item names, in table order.
	ColumnNames() []string

	// RowCount returns the total number of rows.
	RowCount() int

	// RowMatches counts the rows in which every named column is truthy.
	RowMatches(items []string) (int, error)
}

// Observer receives search progress. Implementations must be safe for
// concurrent use; a Miner may be shared across goroutines.
type Observer interface {
	// ObserveLevel is called once per evaluated level.
	ObserveLevel(size, candidates, survivors int)

	// ObserveUnknownColumn is called whenever a driver degrades an
	// unknown-column lookup to zero support.
	ObserveUnknownColumn(items Itemset)
}

type nopObserver struct{}

func (nopObserver) ObserveLevel(int, int, int)   {}
func (nopObserver) ObserveUnknownColumn(Itemset) {}

// Miner mines frequent itemsets and association rules. It holds only its
// configuration and is safe for concurrent use on different sources.
type Miner struct {
	cfg      Config
	log      logrus.FieldLogger
	observer Observer
	workers  int
}

// Option customises a Miner.
type Option func(*Miner)

// WithLogger sets the logger used for search diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Miner) {
		if l != nil {
			m.log = l
		}
	}
}

// WithObserver registers an Observer for search progress.
func WithObserver(o Observer) Option {
	return func(m *Miner) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithWorkers bounds how many candidates of one level have their support
// computed concurrently. Values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(m *Miner) {
		if n < 1 {
			n = 1
		}
		m.workers = n
	}
}

// New creates a Miner after validating cfg.
func New(cfg Config, opts ...Option) (*Miner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Miner{
		cfg:      cfg,
		log:      logrus.StandardLogger(),
		observer: nopObserver{},
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Config returns the configuration the Miner was built with.
func (m *Miner) Config() Config {
	return m.cfg
}
