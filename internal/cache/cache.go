// Package cache holds the in-memory snapshot of day logs that the UI
// renders from. The store is authoritative; the cache exists so a write can
// show up immediately and so a slow range read that resolves later cannot
// roll the display back.
package cache

import (
	"sync"

	"cadence/internal/store"
)

// LogCache is a date-keyed snapshot of day logs. Writes stamp a local
// sequence number per key; range reads carry the sequence observed when the
// fetch was issued and cede to any key written after that point. A
// generation counter invalidates reads issued for a context that has since
// been discarded.
type LogCache struct {
	mu      sync.Mutex
	gen     uint64
	seq     uint64
	logs    map[string]store.DayLog
	written map[string]uint64 // date -> seq of the last local write
}

func NewLogCache() *LogCache {
	return &LogCache{
		logs:    map[string]store.DayLog{},
		written: map[string]uint64{},
	}
}

// Begin captures the markers a caller must hold before issuing a range
// fetch: the current generation and the current write sequence.
func (c *LogCache) Begin() (gen, since uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, c.seq
}

// ApplyWrite merges a just-upserted log into the cache. The entry is
// stamped so that older in-flight reads cannot overwrite it.
func (c *LogCache) ApplyWrite(log store.DayLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.logs[log.Date] = log
	c.written[log.Date] = c.seq
}

// ApplyRange merges the result of a range fetch issued at (gen, since). The
// whole result is discarded when the generation has moved on; otherwise
// each entry lands unless a local write stamped after the fetch began
// already covers its date. Reports whether anything was applied.
func (c *LogCache) ApplyRange(gen, since uint64, logs []store.DayLog) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	for _, l := range logs {
		if c.written[l.Date] > since {
			continue
		}
		c.logs[l.Date] = l
	}
	return true
}

// Get returns the cached log for one date.
func (c *LogCache) Get(date string) (store.DayLog, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.logs[date]
	return l, ok
}

// Snapshot copies the current contents as a sparse log map for the
// analytics functions. The copy is the caller's own; later cache mutations
// never reach it.
func (c *LogCache) Snapshot() map[string]store.DayLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]store.DayLog, len(c.logs))
	for k, v := range c.logs {
		out[k] = v
	}
	return out
}

// Invalidate discards everything and bumps the generation so that reads
// issued before the call can no longer land.
func (c *LogCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.logs = map[string]store.DayLog{}
	c.written = map[string]uint64{}
}
