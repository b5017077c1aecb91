// ArcGIS Catalog - ArcGIS Server Service Discovery and Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arcgis-catalog

package cache

import (
	"sort"
	"strconv"
	"sync"
	"testing"
)

type entry struct{ name string }

func TestIndexCaseInsensitiveKeys(t *testing.T) {
	t.Parallel()
	idx := NewIndex[*entry]()

	e := &entry{name: "catalog"}
	idx.Set("HTTP://X/Y", e)

	got, ok := idx.Get(" http://x/y ")
	if !ok || got != e {
		t.Fatalf("Get() = %v, %v; want the stored entry", got, ok)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1", idx.Len())
	}
	if keys := idx.Keys(); len(keys) != 1 || keys[0] != "http://x/y" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestIndexLastWriteWins(t *testing.T) {
	t.Parallel()
	idx := NewIndex[*entry]()

	first, second := &entry{"first"}, &entry{"second"}
	idx.Set("http://x/map/MapServer", first)
	idx.Set("http://X/Map/MapServer", second)

	if got, _ := idx.Get("http://x/map/mapserver"); got != second {
		t.Errorf("Get() = %v, want second", got)
	}
}

func TestIndexCompareAndSwap(t *testing.T) {
	t.Parallel()
	idx := NewIndex[*entry]()

	original, refreshed, concurrent := &entry{"original"}, &entry{"refreshed"}, &entry{"concurrent"}
	idx.Set("k", original)

	// Another writer replaces the entry between read and update.
	idx.Set("k", concurrent)
	if idx.CompareAndSwap("k", original, refreshed) {
		t.Fatal("CompareAndSwap() succeeded against a replaced entry")
	}
	if got, _ := idx.Peek("k"); got != concurrent {
		t.Errorf("entry = %v, want concurrent writer's value", got)
	}

	if !idx.CompareAndSwap("K", concurrent, refreshed) {
		t.Fatal("CompareAndSwap() failed against the current entry")
	}
	if got, _ := idx.Peek("k"); got != refreshed {
		t.Errorf("entry = %v, want refreshed", got)
	}

	if idx.CompareAndSwap("missing", nil, refreshed) {
		t.Error("CompareAndSwap() must not insert missing keys")
	}

	stats := idx.GetStats()
	if stats.Swaps != 1 || stats.SwapConflicts != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestIndexStats(t *testing.T) {
	t.Parallel()
	idx := NewIndex[string]()

	idx.Set("a", "1")
	idx.Get("a")
	idx.Get("A")
	idx.Get("b")
	idx.Peek("b")

	stats := idx.GetStats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.TotalKeys != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if rate := idx.HitRate(); rate < 66.6 || rate > 66.7 {
		t.Errorf("HitRate() = %v", rate)
	}
}

func TestIndexRangeAllowsReentry(t *testing.T) {
	t.Parallel()
	idx := NewIndex[int]()
	for i := 0; i < 5; i++ {
		idx.Set(strconv.Itoa(i), i)
	}

	var seen []string
	idx.Range(func(key string, value int) bool {
		idx.Set(key+"-copy", value)
		seen = append(seen, key)
		return true
	})
	sort.Strings(seen)

	if len(seen) != 5 {
		t.Errorf("Range visited %v", seen)
	}
	if idx.Len() != 10 {
		t.Errorf("Len() = %d, want 10", idx.Len())
	}

	visited := 0
	idx.Range(func(string, int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("Range did not stop early: %d", visited)
	}
}

func TestIndexConcurrentAccess(t *testing.T) {
	t.Parallel()
	idx := NewIndex[int]()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := strconv.Itoa(j % 16)
				if old, ok := idx.Get(key); ok {
					idx.CompareAndSwap(key, old, old+1)
				} else {
					idx.Set(key, id)
				}
			}
		}(i)
	}
	wg.Wait()

	if idx.Len() != 16 {
		t.Errorf("Len() = %d, want 16", idx.Len())
	}
}
