package store

import (
	"fmt"
	"testing"
	"time"
)

func TestDedupStore_Basic(t *testing.T) {
	s := NewDedupStore(100, 0.001)

	if s.Has("track1") {
		t.Error("empty store should not contain anything")
	}
	if s.Size() != 0 {
		t.Errorf("empty store size should be 0, got %d", s.Size())
	}

	s.Add("track1")
	if !s.Has("track1") {
		t.Error("store should contain track1 after Add")
	}

	s.Add("track1")
	if s.Size() != 1 {
		t.Errorf("adding a duplicate should not grow the store, got size %d", s.Size())
	}

	s.Add("track2")
	s.Add("track3")
	if s.Size() != 3 {
		t.Errorf("expected size 3, got %d", s.Size())
	}
}

func TestDedupStore_Load(t *testing.T) {
	s := NewDedupStore(100, 0.001)

	s.Load([]string{"track1", "", "track2", "track3"})
	if s.Size() != 3 {
		t.Errorf("empty IDs should be skipped, expected size 3, got %d", s.Size())
	}

	s.Load([]string{"track4", "track5"})
	if s.Size() != 2 {
		t.Errorf("Load should replace the set, expected size 2, got %d", s.Size())
	}
	if s.Has("track1") {
		t.Error("old entries should be gone after reload")
	}
	if !s.Has("track4") || !s.Has("track5") {
		t.Error("new entries should be present after reload")
	}
}

func TestDedupStore_Staleness(t *testing.T) {
	s := NewDedupStore(100, 0.001)

	if !s.Stale(time.Hour) {
		t.Error("never-loaded store should be stale")
	}

	s.Load([]string{"track1"})
	if s.Stale(time.Hour) {
		t.Error("freshly loaded store should not be stale")
	}
	if !s.Stale(0) {
		t.Error("zero TTL should always be stale after load")
	}

	// Add alone must not reset the staleness clock.
	s.Clear()
	s.Add("track2")
	if !s.Stale(time.Hour) {
		t.Error("cleared store should be stale even after best-effort Add")
	}
}

func TestDedupStore_MaxCapacity(t *testing.T) {
	const maxTracks = 5
	s := NewDedupStore(maxTracks, 0.001)

	for i := 0; i < maxTracks+3; i++ {
		s.Add(fmt.Sprintf("track%d", i))
	}

	if s.Size() > maxTracks {
		t.Errorf("store size should not exceed %d, got %d", maxTracks, s.Size())
	}

	for _, id := range []string{"track5", "track6", "track7"} {
		if !s.Has(id) {
			t.Errorf("most recent track %s should survive eviction", id)
		}
	}
}

func TestDedupStore_LoadBeyondCapacity(t *testing.T) {
	s := NewDedupStore(2, 0.01)

	// Snapshots far above capacity must still terminate; an over-full map
	// combined with an exhausted LRU used to spin the eviction loop forever.
	done := make(chan struct{})
	go func() {
		s.Load([]string{"a", "b", "c", "d", "e"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Load did not terminate for a snapshot larger than twice the capacity")
	}

	if s.Size() != 2 {
		t.Errorf("expected store bounded to capacity 2, got size %d", s.Size())
	}
	for _, id := range []string{"d", "e"} {
		if !s.Has(id) {
			t.Errorf("most recent entry %s should survive a bounded load", id)
		}
	}
	if s.Has("a") {
		t.Error("oldest entry should have been evicted")
	}
}

func TestDedupStore_FalsePositiveRate(t *testing.T) {
	s := NewDedupStore(1000, 0.001)

	const numTracks = 500
	for i := 0; i < numTracks; i++ {
		s.Add(fmt.Sprintf("track_%d", i))
	}

	for i := 0; i < numTracks; i++ {
		id := fmt.Sprintf("track_%d", i)
		if !s.Has(id) {
			t.Errorf("store should contain %s", id)
		}
	}

	falsePositives := 0
	const probes = 1000
	for i := 0; i < probes; i++ {
		if s.Has(fmt.Sprintf("nonexistent_%d", i)) {
			falsePositives++
		}
	}

	if rate := float64(falsePositives) / probes; rate > 0.01 {
		t.Errorf("false positive rate too high: %f", rate)
	}
}

func BenchmarkDedupStore_Has(b *testing.B) {
	s := NewDedupStore(10000, 0.001)
	for i := 0; i < 1000; i++ {
		s.Add(fmt.Sprintf("track_%d", i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Has(fmt.Sprintf("track_%d", i%1000))
	}
}
