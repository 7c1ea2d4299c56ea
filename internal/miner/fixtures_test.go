package miner_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/ruleminer/internal/dataset"
	"github.com/blackwell-systems/ruleminer/internal/miner"
)

// abcTable has 10 rows: A and B together in 6, A in 8, B in 7, C in 2, and
// A, B, C never all together.
func abcTable(t *testing.T) *dataset.Table {
	t.Helper()
	rows := [][]bool{
		{true, true, false},
		{true, true, false},
		{true, true, false},
		{true, true, false},
		{true, true, false},
		{true, true, false},
		{true, false, false},
		{true, false, false},
		{false, true, true},
		{false, false, true},
	}
	tbl, err := dataset.New([]string{"A", "B", "C"}, rows)
	require.NoError(t, err)
	return tbl
}

// randomTable builds a seeded table where each cell is present with
// probability p.
func randomTable(t *testing.T, seed int64, cols, rows int, p float64) *dataset.Table {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	names := make([]string, cols)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	data := make([][]bool, rows)
	for r := range data {
		data[r] = make([]bool, cols)
		for c := range data[r] {
			data[r][c] = rng.Float64() < p
		}
	}
	tbl, err := dataset.New(names, data)
	require.NoError(t, err)
	return tbl
}

func newMiner(t *testing.T, cfg miner.Config, opts ...miner.Option) *miner.Miner {
	t.Helper()
	m, err := miner.New(cfg, opts...)
	require.NoError(t, err)
	return m
}

func keys(sets []miner.Itemset) []string {
	out := make([]string, len(sets))
	for i, s := range sets {
		out[i] = s.Key()
	}
	return out
}

func set(items ...string) miner.Itemset {
	return miner.Itemset(items)
}
