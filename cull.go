package cache

import "context"

// cull bounds the namespace before a write that may grow it. When
// culling is disabled (maxEntries == 0) it returns without touching
// storage at all; callers rely on the zero-listing guarantee.
func (c *Cache) cull(ctx context.Context) {
	if c.maxEntries == 0 {
		return
	}
	c.trim(ctx, c.maxEntries, c.cullFrequency)
}

// trim lists the namespace and, if the entry count has reached
// threshold, bulk-deletes the victim sample selected by frequency.
// A threshold of 0 trims unconditionally and a frequency of 0 selects
// every key, which together implement Clear.
//
// Trimming is best effort: listing and delete failures are absorbed, a
// failed cycle just skips the trim. The list-then-delete sequence is not
// atomic against concurrent writers; keys written after the listing
// snapshot survive, and keys deleted by another actor are deleted again
// harmlessly.
func (c *Cache) trim(ctx context.Context, threshold, frequency int) {
	keys, err := c.store.ListKeys(ctx)
	if err != nil {
		c.absorb("cull", "", err)
		return
	}
	if len(keys) < threshold {
		return
	}

	victims := cullVictims(keys, frequency)
	if err := c.store.RemoveAll(ctx, victims); err != nil {
		c.absorb("cull", "", err)
		return
	}

	cullRuns.Inc()
	culledKeys.Add(float64(len(victims)))
}

// cullVictims selects every frequency-th key (0-indexed) from the
// listing order; frequency 0 selects all keys. The modulo sampling is
// deliberate: the storage layer has no recency metadata, so the engine
// trades LRU precision for a deterministic rule that needs nothing
// beyond key order. Callers depend on the exact positions selected.
func cullVictims(keys []string, frequency int) []string {
	if frequency == 0 {
		return keys
	}

	victims := make([]string, 0, len(keys)/frequency+1)
	for i, key := range keys {
		if i%frequency == 0 {
			victims = append(victims, key)
		}
	}
	return victims
}
