package dataset

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/blackwell-systems/ruleminer/internal/miner"
)

// Cached memoises RowMatches of a slower source (typically a database view)
// per canonical itemset. The wrapped source must not change while the
// Cached value is in use; build a new one per mining run.
type Cached struct {
	src   miner.TabularSource
	cache *lru.Cache[string, int]
}

var _ miner.TabularSource = (*Cached)(nil)

// NewCached wraps src with an LRU cache holding up to size row counts.
func NewCached(src miner.TabularSource, size int) (*Cached, error) {
	if src == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	cache, err := lru.New[string, int](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create row count cache: %w", err)
	}
	return &Cached{src: src, cache: cache}, nil
}

// ColumnNames delegates to the wrapped source.
func (c *Cached) ColumnNames() []string {
	return c.src.ColumnNames()
}

// RowCount delegates to the wrapped source.
func (c *Cached) RowCount() int {
	return c.src.RowCount()
}

// RowMatches returns the cached count for items, querying the wrapped source
// on a miss. Errors are not cached.
func (c *Cached) RowMatches(items []string) (int, error) {
	key := miner.Itemset(items).Key()
	if n, ok := c.cache.Get(key); ok {
		return n, nil
	}

	n, err := c.src.RowMatches(items)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, n)
	return n, nil
}

// Len returns the number of cached itemsets.
func (c *Cached) Len() int {
	return c.cache.Len()
}
