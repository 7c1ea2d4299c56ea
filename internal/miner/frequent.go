package miner

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// FrequentItemsets returns the last frontier of the level-wise search: the
// largest itemset size at which at least one candidate met the support
// threshold. Smaller frequent itemsets are not included once a larger level
// survives. The result is empty when no single item is frequent.
//
// Every itemset of an empty table has support 0, so a threshold of 0 keeps
// every candidate and the search runs to the itemset of all columns. Any
// positive threshold yields an empty result for an empty table.
func (m *Miner) FrequentItemsets(src TabularSource) ([]Itemset, error) {
	levels, err := m.Levels(src)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, nil
	}
	return levels[len(levels)-1].Itemsets(), nil
}

// Levels runs the level-wise search and returns every non-empty frontier in
// search order, starting with frequent single items.
func (m *Miner) Levels(src TabularSource) ([]Level, error) {
	columns := src.ColumnNames()
	candidates := make([]Itemset, len(columns))
	for i, c := range columns {
		candidates[i] = Itemset{c}
	}

	var levels []Level
	for size := 1; len(candidates) > 0; size++ {
		supports, err := m.supports(src, candidates)
		if err != nil {
			return nil, err
		}

		level := Level{Size: size, Candidates: len(candidates)}
		for i, sup := range supports {
			if sup >= m.cfg.SupportThreshold {
				level.Survivors = append(level.Survivors, ScoredItemset{Items: candidates[i], Support: sup})
			}
		}

		m.observer.ObserveLevel(size, len(candidates), len(level.Survivors))
		m.log.WithFields(logrus.Fields{
			"size":       size,
			"candidates": len(candidates),
			"survivors":  len(level.Survivors),
		}).Debug("evaluated search level")

		if len(level.Survivors) == 0 {
			break
		}
		levels = append(levels, level)
		candidates = Merge(level.Itemsets())
	}

	return levels, nil
}

// supports computes the support of every candidate, up to m.workers at a
// time. Results are index-aligned with candidates.
func (m *Miner) supports(src TabularSource, candidates []Itemset) ([]float64, error) {
	out := make([]float64, len(candidates))

	var g errgroup.Group
	g.SetLimit(m.workers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			sup, err := m.supportOrZero(src, candidates[i])
			if err != nil {
				return err
			}
			out[i] = sup
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
