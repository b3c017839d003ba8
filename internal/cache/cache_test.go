package cache

import (
	"testing"

	"cadence/internal/store"
)

func log(date, mood string) store.DayLog {
	return store.DayLog{Date: date, Mood: mood, HabitStatus: map[string]store.RawEntry{}}
}

func TestApplyWriteAndGet(t *testing.T) {
	c := NewLogCache()
	c.ApplyWrite(log("2024-01-15", "happy"))

	got, ok := c.Get("2024-01-15")
	if !ok || got.Mood != "happy" {
		t.Fatalf("Get = %+v, %v", got, ok)
	}
	if _, ok := c.Get("2024-01-16"); ok {
		t.Fatal("unwritten date should be absent")
	}
}

func TestRangeReadCedesToNewerWrite(t *testing.T) {
	c := NewLogCache()

	// A range fetch goes out, then a local write lands before it resolves.
	gen, since := c.Begin()
	c.ApplyWrite(log("2024-01-15", "happy"))

	applied := c.ApplyRange(gen, since, []store.DayLog{
		log("2024-01-15", "angry"), // stale copy of the written date
		log("2024-01-16", "rest"),
	})
	if !applied {
		t.Fatal("same-generation read should apply")
	}

	got, _ := c.Get("2024-01-15")
	if got.Mood != "happy" {
		t.Fatalf("stale read clobbered the write: mood = %q", got.Mood)
	}
	if got, ok := c.Get("2024-01-16"); !ok || got.Mood != "rest" {
		t.Fatal("untouched dates from the read should land")
	}
}

func TestRangeReadAfterWriteApplies(t *testing.T) {
	c := NewLogCache()
	c.ApplyWrite(log("2024-01-15", "happy"))

	// This fetch began after the write, so its copy is at least as new.
	gen, since := c.Begin()
	c.ApplyRange(gen, since, []store.DayLog{log("2024-01-15", "angry")})

	got, _ := c.Get("2024-01-15")
	if got.Mood != "angry" {
		t.Fatalf("fresh read should apply: mood = %q", got.Mood)
	}
}

func TestInvalidateDiscardsInFlightReads(t *testing.T) {
	c := NewLogCache()
	gen, since := c.Begin()

	c.Invalidate()

	if c.ApplyRange(gen, since, []store.DayLog{log("2024-01-15", "happy")}) {
		t.Fatal("read from a dead generation should be discarded")
	}
	if _, ok := c.Get("2024-01-15"); ok {
		t.Fatal("discarded read should not be visible")
	}
}

func TestInvalidateClearsContents(t *testing.T) {
	c := NewLogCache()
	c.ApplyWrite(log("2024-01-15", "happy"))
	c.Invalidate()
	if _, ok := c.Get("2024-01-15"); ok {
		t.Fatal("invalidate should clear cached entries")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewLogCache()
	c.ApplyWrite(log("2024-01-15", "happy"))

	snap := c.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot size = %d", len(snap))
	}

	c.ApplyWrite(log("2024-01-16", "rest"))
	if len(snap) != 1 {
		t.Fatal("snapshot should not see later writes")
	}

	delete(snap, "2024-01-15")
	if _, ok := c.Get("2024-01-15"); !ok {
		t.Fatal("mutating the snapshot should not touch the cache")
	}
}
