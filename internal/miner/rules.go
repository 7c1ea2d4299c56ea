package miner

import "fmt"

// RulesFor enumerates every rule LHS -> RHS whose sides partition itemset.
// LHS runs over all combinations of size 1 through n-1, in lexicographic
// index order; RHS is the complement in itemset order. An itemset of n items
// yields 2^n - 2 rules, none for n < 2.
func RulesFor(itemset Itemset) []Rule {
	n := len(itemset)
	if n < 2 {
		return nil
	}

	rules := make([]Rule, 0, (1<<n)-2)
	for r := 1; r < n; r++ {
		forEachCombination(n, r, func(idx []int) {
			lhs := make(Itemset, len(idx))
			for i, j := range idx {
				lhs[i] = itemset[j]
			}
			rules = append(rules, Rule{LHS: lhs, RHS: itemset.Minus(lhs)})
		})
	}
	return rules
}

// forEachCombination calls fn with every r-combination of 0..n-1 in
// lexicographic order. fn must not retain idx.
func forEachCombination(n, r int, fn func(idx []int)) {
	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)

		i := r - 1
		for i >= 0 && idx[i] == n-r+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < r; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// Confidence returns support(LHS ∪ RHS) / support(LHS), or 0 when the LHS
// never occurs.
func (m *Miner) Confidence(src TabularSource, rule Rule) (float64, error) {
	full, err := m.Support(src, rule.Items())
	if err != nil {
		return 0, err
	}
	lhs, err := m.Support(src, rule.LHS)
	if err != nil {
		return 0, err
	}
	if lhs == 0 {
		return 0, nil
	}
	return full / lhs, nil
}

// AssociationRules mines the rules of src that meet both thresholds: it
// runs the frequent itemset search and passes the frontier to
// RulesFromItemsets.
func (m *Miner) AssociationRules(src TabularSource) ([]Rule, error) {
	itemsets, err := m.FrequentItemsets(src)
	if err != nil {
		return nil, err
	}
	return m.RulesFromItemsets(src, itemsets)
}

// RulesFromItemsets filters the rules of already-mined itemsets without
// searching again.
//
// Every rule of every itemset is re-checked: support(LHS ∪ RHS) must reach
// the support threshold, support(LHS) must be non-zero, and the confidence
// must reach the confidence threshold. Output order follows the itemset
// order and then RulesFor order.
func (m *Miner) RulesFromItemsets(src TabularSource, itemsets []Itemset) ([]Rule, error) {
	var candidates []Rule
	for _, itemset := range itemsets {
		candidates = append(candidates, RulesFor(itemset)...)
	}

	var kept []Rule
	for _, rule := range candidates {
		sup, err := m.supportOrZero(src, rule.Items())
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate rule %s: %w", rule, err)
		}
		if sup < m.cfg.SupportThreshold {
			continue
		}

		lhsSup, err := m.supportOrZero(src, rule.LHS)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate rule %s: %w", rule, err)
		}
		if lhsSup == 0 {
			continue
		}

		confidence := sup / lhsSup
		if confidence < m.cfg.ConfidenceThreshold {
			continue
		}

		rule.Support = sup
		rule.Confidence = confidence
		kept = append(kept, rule)
	}

	m.log.WithField("rules", len(kept)).Debug("filtered association rules")
	return kept, nil
}
