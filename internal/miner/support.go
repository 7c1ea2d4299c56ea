package miner

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	// ErrUnknownColumn is returned by Support when an itemset names a column
	// the source does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrEmptyItemset is returned by Support for an itemset with no items.
	ErrEmptyItemset = errors.New("empty itemset")
)

// Support returns the number of rows of src containing every item, or that
// number divided by the row count in relative mode. An empty table has
// support 0 for everything.
//
// An itemset naming a column src does not have yields 0 and an error
// wrapping ErrUnknownColumn.
func (m *Miner) Support(src TabularSource, items Itemset) (float64, error) {
	if len(items) == 0 {
		return 0, ErrEmptyItemset
	}

	if missing := missingColumns(src, items); len(missing) > 0 {
		return 0, fmt.Errorf("%w: %v not found in source", ErrUnknownColumn, missing)
	}

	count, err := src.RowMatches(items)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows for %s: %w", items, err)
	}

	if !m.cfg.RelativeSupport {
		return float64(count), nil
	}

	total := src.RowCount()
	if total == 0 {
		return 0, nil
	}
	return float64(count) / float64(total), nil
}

// supportOrZero is the caller policy the search and filter drivers apply:
// an unknown column degrades to zero support, reported separately from a
// genuine zero. Any other error is returned.
func (m *Miner) supportOrZero(src TabularSource, items Itemset) (float64, error) {
	sup, err := m.Support(src, items)
	if errors.Is(err, ErrUnknownColumn) {
		m.log.WithFields(logrus.Fields{
			"items": items.String(),
			"error": err.Error(),
		}).Warn("itemset references unknown columns, treating support as zero")
		m.observer.ObserveUnknownColumn(items)
		return 0, nil
	}
	return sup, err
}

// missingColumns returns the items that are not columns of src.
func missingColumns(src TabularSource, items Itemset) []string {
	known := make(map[string]struct{})
	for _, c := range src.ColumnNames() {
		known[c] = struct{}{}
	}

	var missing []string
	for _, it := range items {
		if _, ok := known[it]; !ok {
			missing = append(missing, it)
		}
	}
	return missing
}
