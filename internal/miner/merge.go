package miner

// Merge grows same-size itemsets into candidates one item larger.
//
// Size-1 itemsets are paired into every 2-combination. For size k >= 2 every
// pair whose union has exactly k+1 items (they share k-1 items) becomes a
// candidate, once per distinct item set. Candidates appear in the order
// their first generating pair is visited.
//
//	Merge([[1 2] [1 3] [1 5] [2 6]]) == [[1 2 3] [1 2 5] [1 2 6] [1 3 5]]
func Merge(itemsets []Itemset) []Itemset {
	if len(itemsets) == 0 {
		return nil
	}

	k := len(itemsets[0])
	var out []Itemset

	if k == 1 {
		for i := 0; i < len(itemsets); i++ {
			for j := i + 1; j < len(itemsets); j++ {
				out = append(out, Itemset{itemsets[i][0], itemsets[j][0]})
			}
		}
		return out
	}

	seen := make(map[string]struct{})
	for i := 0; i < len(itemsets); i++ {
		for j := i + 1; j < len(itemsets); j++ {
			combined := itemsets[i].Union(itemsets[j])
			if len(combined) != k+1 {
				continue
			}
			key := combined.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, combined)
		}
	}
	return out
}
