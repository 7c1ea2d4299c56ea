// Package miner implements level-wise (Apriori) association rule mining over
// a boolean table.
//
// A Miner is configured once with a support threshold, a confidence
// threshold and a support mode, and then run against any TabularSource:
//
//	m, err := miner.New(miner.Config{
//		SupportThreshold:    0.5,
//		ConfidenceThreshold: 0.7,
//		RelativeSupport:     true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := m.AssociationRules(table)
//
// The pipeline is strictly forward: FrequentItemsets drives Support and
// Merge level by level, RulesFor expands each frequent itemset into every
// LHS/RHS partition, and AssociationRules keeps the partitions that clear
// both thresholds.
//
// FrequentItemsets returns only the last surviving frontier, never the union
// of every level. Use Levels to see each intermediate frontier.
package miner
