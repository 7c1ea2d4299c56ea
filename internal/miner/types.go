package miner

import (
	"sort"
	"strings"
)

// Itemset is a duplicate-free collection of item (column) names.
// Order is irrelevant for equality; Key and Canonical give the sorted form.
type Itemset []string

// Canonical returns a sorted copy of the itemset.
func (s Itemset) Canonical() Itemset {
	out := make(Itemset, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}

// Key returns a string that is equal for two itemsets iff they hold the
// same items.
func (s Itemset) Key() string {
	return strings.Join(s.Canonical(), "\x00")
}

// Equal reports whether both itemsets hold the same items.
func (s Itemset) Equal(other Itemset) bool {
	return len(s) == len(other) && s.Key() == other.Key()
}

// Contains reports whether item is a member of the itemset.
func (s Itemset) Contains(item string) bool {
	for _, it := range s {
		if it == item {
			return true
		}
	}
	return false
}

// Union returns the sorted set union of s and other.
func (s Itemset) Union(other Itemset) Itemset {
	seen := make(map[string]struct{}, len(s)+len(other))
	out := make(Itemset, 0, len(s)+len(other))
	for _, group := range [2]Itemset{s, other} {
		for _, it := range group {
			if _, ok := seen[it]; ok {
				continue
			}
			seen[it] = struct{}{}
			out = append(out, it)
		}
	}
	sort.Strings(out)
	return out
}

// Minus returns the items of s not present in other, in s's order.
func (s Itemset) Minus(other Itemset) Itemset {
	out := make(Itemset, 0, len(s))
	for _, it := range s {
		if !other.Contains(it) {
			out = append(out, it)
		}
	}
	return out
}

// String renders the itemset as {a, b, c}.
func (s Itemset) String() string {
	return "{" + strings.Join(s, ", ") + "}"
}

// Rule is an association rule LHS -> RHS. Support and Confidence are filled
// in by AssociationRules; RulesFor leaves them zero.
type Rule struct {
	LHS        Itemset
	RHS        Itemset
	Support    float64
	Confidence float64
}

// Items returns LHS followed by RHS.
func (r Rule) Items() Itemset {
	out := make(Itemset, 0, len(r.LHS)+len(r.RHS))
	out = append(out, r.LHS...)
	return append(out, r.RHS...)
}

// String renders the rule as {a} -> {b}.
func (r Rule) String() string {
	return r.LHS.String() + " -> " + r.RHS.String()
}

// ScoredItemset pairs an itemset with its support.
type ScoredItemset struct {
	Items   Itemset
	Support float64
}

// Level is one frontier of the search: the candidates of a single size that
// met the support threshold.
type Level struct {
	Size       int
	Candidates int
	Survivors  []ScoredItemset
}

// Itemsets returns the surviving itemsets without their supports.
func (l Level) Itemsets() []Itemset {
	out := make([]Itemset, len(l.Survivors))
	for i, s := range l.Survivors {
		out[i] = s.Items
	}
	return out
}
