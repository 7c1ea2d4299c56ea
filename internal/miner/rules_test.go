package miner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/ruleminer/internal/dataset"
	"github.com/blackwell-systems/ruleminer/internal/miner"
)

func TestRulesFor_Order(t *testing.T) {
	rules := miner.RulesFor(set("a", "b", "c"))

	want := []miner.Rule{
		{LHS: set("a"), RHS: set("b", "c")},
		{LHS: set("b"), RHS: set("a", "c")},
		{LHS: set("c"), RHS: set("a", "b")},
		{LHS: set("a", "b"), RHS: set("c")},
		{LHS: set("a", "c"), RHS: set("b")},
		{LHS: set("b", "c"), RHS: set("a")},
	}
	assert.Equal(t, want, rules)
}

func TestRulesFor_Completeness(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}
	for n := 1; n <= len(items); n++ {
		itemset := miner.Itemset(items[:n])
		rules := miner.RulesFor(itemset)

		want := (1 << n) - 2
		require.Len(t, rules, want, "itemset of size %d", n)

		seen := make(map[string]bool)
		for _, r := range rules {
			assert.NotEmpty(t, r.LHS)
			assert.NotEmpty(t, r.RHS)
			for _, it := range r.LHS {
				assert.False(t, r.RHS.Contains(it), "rule %s overlaps", r)
			}
			assert.True(t, r.Items().Equal(itemset), "rule %s does not cover %s", r, itemset)

			k := r.LHS.Key()
			assert.False(t, seen[k], "duplicate LHS %v", r.LHS)
			seen[k] = true
		}
	}
}

func TestRulesFor_TooSmall(t *testing.T) {
	assert.Empty(t, miner.RulesFor(nil))
	assert.Empty(t, miner.RulesFor(set("a")))
}

func TestAssociationRules_EndToEnd(t *testing.T) {
	tbl := abcTable(t)
	m := newMiner(t, miner.Config{SupportThreshold: 0.5, ConfidenceThreshold: 0.7, RelativeSupport: true})

	rules, err := m.AssociationRules(tbl)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, set("A"), rules[0].LHS)
	assert.Equal(t, set("B"), rules[0].RHS)
	assert.InDelta(t, 0.6, rules[0].Support, 1e-12)
	assert.InDelta(t, 0.75, rules[0].Confidence, 1e-12)

	// B -> A uses support(B) = 0.7 as its denominator.
	assert.Equal(t, set("B"), rules[1].LHS)
	assert.Equal(t, set("A"), rules[1].RHS)
	assert.InDelta(t, 0.6/0.7, rules[1].Confidence, 1e-12)

	conf, err := m.Confidence(tbl, miner.Rule{LHS: set("A"), RHS: set("B")})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, conf, 1e-12)
}

func TestRulesFromItemsets_ReusesFrontier(t *testing.T) {
	tbl := abcTable(t)
	cfg := miner.Config{SupportThreshold: 0.5, ConfidenceThreshold: 0.7, RelativeSupport: true}

	want, err := newMiner(t, cfg).AssociationRules(tbl)
	require.NoError(t, err)

	obs := &recordingObserver{}
	m := newMiner(t, cfg, miner.WithObserver(obs))
	levels, err := m.Levels(tbl)
	require.NoError(t, err)
	require.NotEmpty(t, levels)

	got, err := m.RulesFromItemsets(tbl, levels[len(levels)-1].Itemsets())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, [][3]int{{1, 3, 2}, {2, 1, 1}}, obs.levels, "filtering must not search again")
}

func TestRulesFromItemsets_NoItemsets(t *testing.T) {
	m := newMiner(t, miner.Config{ConfidenceThreshold: 0.5})

	rules, err := m.RulesFromItemsets(abcTable(t), nil)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestAssociationRules_ConfidenceThresholdFilters(t *testing.T) {
	m := newMiner(t, miner.Config{SupportThreshold: 0.5, ConfidenceThreshold: 0.8, RelativeSupport: true})

	rules, err := m.AssociationRules(abcTable(t))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "{B} -> {A}", rules[0].String())
}

func TestAssociationRules_SinglesYieldNoRules(t *testing.T) {
	m := newMiner(t, miner.Config{SupportThreshold: 0.65, RelativeSupport: true})

	rules, err := m.AssociationRules(abcTable(t))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestAssociationRules_EmptyTable(t *testing.T) {
	m := newMiner(t, miner.Config{SupportThreshold: 0.5, RelativeSupport: true})

	rules, err := m.AssociationRules(dataset.MustNew([]string{"A", "B"}, nil))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestAssociationRules_Properties(t *testing.T) {
	tbl := randomTable(t, 2024, 6, 100, 0.65)
	cfg := miner.Config{SupportThreshold: 0.25, ConfidenceThreshold: 0.3, RelativeSupport: true}
	m := newMiner(t, cfg)

	rules, err := m.AssociationRules(tbl)
	require.NoError(t, err)
	require.NotEmpty(t, rules)

	for _, r := range rules {
		assert.GreaterOrEqual(t, r.Confidence, cfg.ConfidenceThreshold, "rule %s", r)
		assert.LessOrEqual(t, r.Confidence, 1.0, "rule %s", r)
		assert.GreaterOrEqual(t, r.Support, cfg.SupportThreshold, "rule %s", r)

		conf, err := m.Confidence(tbl, r)
		require.NoError(t, err)
		assert.InDelta(t, r.Confidence, conf, 1e-12)
	}

	again, err := m.AssociationRules(tbl)
	require.NoError(t, err)
	assert.Equal(t, rules, again, "mining must be idempotent")
}

func TestConfidence_ZeroLHS(t *testing.T) {
	tbl := dataset.MustNew([]string{"A", "B"}, [][]bool{{false, true}, {false, true}})
	m := newMiner(t, miner.Config{})

	conf, err := m.Confidence(tbl, miner.Rule{LHS: set("A"), RHS: set("B")})
	require.NoError(t, err)
	assert.Zero(t, conf)
}

func TestConfidence_UnknownColumn(t *testing.T) {
	m := newMiner(t, miner.Config{})
	_, err := m.Confidence(abcTable(t), miner.Rule{LHS: set("Q"), RHS: set("A")})
	assert.ErrorIs(t, err, miner.ErrUnknownColumn)
}
