package filecache

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable timestamp source for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestGetSetRoundTrip(t *testing.T) {
	cache := New(Options{})

	if _, ok := cache.Get("repo", "a.js", "rev1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Set("repo", "a.js", "rev1", "content-a")

	got, ok := cache.Get("repo", "a.js", "rev1")
	if !ok || got != "content-a" {
		t.Fatalf("Get = (%q, %v), want (content-a, true)", got, ok)
	}

	// Every key axis participates.
	if _, ok := cache.Get("repo", "a.js", "rev2"); ok {
		t.Error("different revision must not hit")
	}
	if _, ok := cache.Get("other", "a.js", "rev1"); ok {
		t.Error("different repo must not hit")
	}
	if _, ok := cache.Get("repo", "b.js", "rev1"); ok {
		t.Error("different path must not hit")
	}
}

func TestEntryCountBound(t *testing.T) {
	cache := New(Options{MaxEntries: 3})

	for i := 0; i < 10; i++ {
		cache.Set("repo", fmt.Sprintf("f%d.js", i), "rev", "x")
		if s := cache.Stats(); s.Entries > 3 {
			t.Fatalf("entry count %d exceeds budget after insert %d", s.Entries, i)
		}
	}

	// Oldest were evicted; the most recent three survive.
	for i := 0; i < 7; i++ {
		if cache.Has("repo", fmt.Sprintf("f%d.js", i), "rev") {
			t.Errorf("f%d.js should have been evicted", i)
		}
	}
	for i := 7; i < 10; i++ {
		if !cache.Has("repo", fmt.Sprintf("f%d.js", i), "rev") {
			t.Errorf("f%d.js should still be cached", i)
		}
	}
}

func TestByteBudgetEviction(t *testing.T) {
	// 1000-byte budget; entries of 90 bytes each (oversize cap is 100).
	cache := New(Options{MaxBytes: 1000, MaxEntries: 100})
	chunk := strings.Repeat("x", 90)

	for i := 0; i < 40; i++ {
		cache.Set("repo", fmt.Sprintf("f%d", i), "rev", chunk)
		if s := cache.Stats(); s.TotalBytes > 1000 {
			t.Fatalf("total bytes %d exceeds budget after insert %d", s.TotalBytes, i)
		}
	}

	// Byte-pressure eviction drains to at most 80% of the budget before
	// inserting, so the steady state stays well under the cap.
	s := cache.Stats()
	if s.TotalBytes > 800 {
		t.Errorf("steady-state bytes = %d, want <= 800", s.TotalBytes)
	}
	if s.Entries == 0 {
		t.Error("cache should not be empty")
	}
}

func TestOversizedContentRejected(t *testing.T) {
	cache := New(Options{MaxBytes: 1000})

	big := strings.Repeat("x", 101) // over 10% of maxBytes
	cache.Set("repo", "big.js", "rev", big)

	if _, ok := cache.Get("repo", "big.js", "rev"); ok {
		t.Error("oversized content must never be retrievable")
	}
	if s := cache.Stats(); s.Entries != 0 || s.TotalBytes != 0 {
		t.Errorf("oversized set must be a no-op, stats = %+v", s)
	}

	// Exactly at the threshold is allowed.
	cache.Set("repo", "ok.js", "rev", strings.Repeat("x", 100))
	if !cache.Has("repo", "ok.js", "rev") {
		t.Error("content at exactly 10%% of budget should cache")
	}
}

func TestTTLExpiry(t *testing.T) {
	clock := newFakeClock()
	cache := New(Options{TTL: time.Minute, Now: clock.Now})

	cache.Set("repo", "a.js", "rev", "content")

	clock.Advance(time.Minute - time.Second)
	if !cache.Has("repo", "a.js", "rev") {
		t.Fatal("entry should be present just before TTL")
	}

	clock.Advance(2 * time.Second)
	if cache.Has("repo", "a.js", "rev") {
		t.Fatal("entry should be absent just after TTL")
	}
	if _, ok := cache.Get("repo", "a.js", "rev"); ok {
		t.Fatal("expired entry must read as a miss")
	}
	if s := cache.Stats(); s.Entries != 0 {
		t.Errorf("lazy expiry should have deleted the entry, stats = %+v", s)
	}
}

func TestHasDoesNotTouchCounters(t *testing.T) {
	cache := New(Options{})
	cache.Set("repo", "a.js", "rev", "content")

	cache.Has("repo", "a.js", "rev")
	cache.Has("repo", "missing.js", "rev")

	s := cache.Stats()
	if s.Hits != 0 || s.Misses != 0 {
		t.Errorf("Has must not touch counters, stats = %+v", s)
	}
	if s.HitRate != 0 || s.MissRate != 0 {
		t.Errorf("rates must be 0 with no requests, stats = %+v", s)
	}
}

func TestHitMissAccounting(t *testing.T) {
	cache := New(Options{})
	cache.Set("repo", "a.js", "rev", "content")

	for i := 0; i < 3; i++ {
		cache.Get("repo", "a.js", "rev")
	}
	for i := 0; i < 2; i++ {
		cache.Get("repo", "absent.js", "rev")
	}

	s := cache.Stats()
	if s.Hits != 3 || s.Misses != 2 {
		t.Fatalf("hits/misses = %d/%d, want 3/2", s.Hits, s.Misses)
	}
	if want := 3.0 / 5.0; s.HitRate != want {
		t.Errorf("hitRate = %v, want %v", s.HitRate, want)
	}
	if want := 2.0 / 5.0; s.MissRate != want {
		t.Errorf("missRate = %v, want %v", s.MissRate, want)
	}
}

func TestRemoveAndClear(t *testing.T) {
	cache := New(Options{})
	cache.Set("repo", "a.js", "rev", "aa")
	cache.Set("repo", "b.js", "rev", "bb")

	if !cache.Remove("repo", "a.js", "rev") {
		t.Error("Remove should report true for existing entry")
	}
	if cache.Remove("repo", "a.js", "rev") {
		t.Error("Remove should report false for absent entry")
	}

	cache.Clear()
	s := cache.Stats()
	if s.Entries != 0 || s.TotalBytes != 0 {
		t.Errorf("Clear left residue, stats = %+v", s)
	}
}

func TestClearExpired(t *testing.T) {
	clock := newFakeClock()
	cache := New(Options{TTL: time.Minute, Now: clock.Now})

	cache.Set("repo", "old.js", "rev", "old")
	clock.Advance(2 * time.Minute)
	cache.Set("repo", "new.js", "rev", "new")

	if removed := cache.ClearExpired(); removed != 1 {
		t.Fatalf("ClearExpired removed %d, want 1", removed)
	}
	if cache.Has("repo", "old.js", "rev") {
		t.Error("expired entry survived sweep")
	}
	if !cache.Has("repo", "new.js", "rev") {
		t.Error("fresh entry was swept")
	}
	if s := cache.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("sweep must not touch counters, stats = %+v", s)
	}
}

func TestSetReplacesExisting(t *testing.T) {
	cache := New(Options{MaxBytes: 1000})

	cache.Set("repo", "a.js", "rev", strings.Repeat("x", 80))
	cache.Set("repo", "a.js", "rev", strings.Repeat("y", 40))

	s := cache.Stats()
	if s.Entries != 1 {
		t.Fatalf("entries = %d, want 1", s.Entries)
	}
	if s.TotalBytes != 40 {
		t.Errorf("totalBytes = %d, want 40 (no double counting)", s.TotalBytes)
	}
}

func TestConcurrentAccess(t *testing.T) {
	cache := New(Options{MaxBytes: 10000, MaxEntries: 50})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				path := fmt.Sprintf("f%d.js", i%60)
				cache.Set("repo", path, "rev", strings.Repeat("x", 50))
				cache.Get("repo", path, "rev")
				if i%17 == 0 {
					cache.Remove("repo", path, "rev")
				}
			}
		}(g)
	}
	wg.Wait()

	s := cache.Stats()
	if s.Entries > 50 {
		t.Errorf("entry budget violated under concurrency: %d", s.Entries)
	}
	if s.TotalBytes > 10000 {
		t.Errorf("byte budget violated under concurrency: %d", s.TotalBytes)
	}
}
