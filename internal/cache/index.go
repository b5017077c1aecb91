// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package cache

import (
	"sync"

	"github.com/tomtom215/arcgis-catalog/internal/arcgis"
)

// Stats tracks index performance metrics
type Stats struct {
	Hits          int64
	Misses        int64
	Swaps         int64
	SwapConflicts int64
	TotalKeys     int64
}

// Index is a thread-safe map keyed by case-insensitive URL. Entries never
// expire; a key is only ever overwritten by Set or CompareAndSwap.
//
// T must be comparable so CompareAndSwap can detect concurrent replacement.
// Pointer and interface types are the intended values.
type Index[T comparable] struct {
	mu      sync.RWMutex
	entries map[string]T

	statsMu sync.Mutex
	stats   Stats
}

// NewIndex creates an empty index.
func NewIndex[T comparable]() *Index[T] {
	return &Index[T]{
		entries: make(map[string]T),
	}
}

// Key normalizes a URL into its index key: surrounding whitespace is trimmed
// and the result lower-cased, so "HTTP://X/Y" and "http://x/y" share an entry.
func Key(rawURL string) string {
	return arcgis.NormalizeKey(rawURL)
}

// Get retrieves the value stored for rawURL.
//
// Statistics:
//   - Increments Hits counter on successful retrieval
//   - Increments Misses counter otherwise
func (x *Index[T]) Get(rawURL string) (T, bool) {
	x.mu.RLock()
	value, ok := x.entries[Key(rawURL)]
	x.mu.RUnlock()

	x.statsMu.Lock()
	if ok {
		x.stats.Hits++
	} else {
		x.stats.Misses++
	}
	x.statsMu.Unlock()

	return value, ok
}

// Peek is Get without touching statistics.
func (x *Index[T]) Peek(rawURL string) (T, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	value, ok := x.entries[Key(rawURL)]
	return value, ok
}

// Set stores value for rawURL, replacing any existing entry (last write wins).
func (x *Index[T]) Set(rawURL string, value T) {
	x.mu.Lock()
	x.entries[Key(rawURL)] = value
	n := len(x.entries)
	x.mu.Unlock()

	x.statsMu.Lock()
	x.stats.TotalKeys = int64(n)
	x.statsMu.Unlock()
}

// CompareAndSwap replaces the entry for rawURL with value only if it still
// holds old. It returns false, leaving the index untouched, when another
// writer replaced or removed the entry in the meantime.
func (x *Index[T]) CompareAndSwap(rawURL string, old, value T) bool {
	key := Key(rawURL)

	x.mu.Lock()
	current, ok := x.entries[key]
	swapped := ok && current == old
	if swapped {
		x.entries[key] = value
	}
	x.mu.Unlock()

	x.statsMu.Lock()
	if swapped {
		x.stats.Swaps++
	} else {
		x.stats.SwapConflicts++
	}
	x.statsMu.Unlock()

	return swapped
}

// Range calls fn for every entry until fn returns false. The index is
// snapshotted first, so fn may call back into the index.
func (x *Index[T]) Range(fn func(key string, value T) bool) {
	x.mu.RLock()
	snapshot := make(map[string]T, len(x.entries))
	for k, v := range x.entries {
		snapshot[k] = v
	}
	x.mu.RUnlock()

	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}

// Keys returns the normalized keys currently stored.
func (x *Index[T]) Keys() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	keys := make([]string, 0, len(x.entries))
	for k := range x.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of entries.
func (x *Index[T]) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// GetStats returns a snapshot of index statistics.
func (x *Index[T]) GetStats() Stats {
	x.statsMu.Lock()
	defer x.statsMu.Unlock()
	return x.stats
}

// HitRate returns the hit rate as a percentage
func (x *Index[T]) HitRate() float64 {
	stats := x.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}
