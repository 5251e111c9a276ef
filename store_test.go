package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Horse-MA00/portfolio/internal/layout"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(context.Background(), "")
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(fallbackAt ...int) layout.Result {
	res := layout.Result{Placements: []layout.Placement{
		{Rect: layout.Rect{Top: 5, Left: 5, Width: 10, Height: 16}, Attempts: 1},
		{Rect: layout.Rect{Top: 5, Left: 85, Width: 10, Height: 16}, Attempts: 3},
	}}
	for _, i := range fallbackAt {
		res.Placements[i].Fallback = true
		res.Placements[i].Attempts = 200
	}
	return res
}

func TestStoreRecordAndStats(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()

	records := []LayoutRecord{
		{ID: "a", Visitor: "v1", Path: "/", CreatedAt: now, Result: testResult()},
		{ID: "b", Visitor: "v1", Path: "/", CreatedAt: now.Add(time.Second), Result: testResult(1)},
		{ID: "c", Visitor: "v2", Path: "/", CreatedAt: now.Add(2 * time.Second), Result: testResult()},
	}
	for _, rec := range records {
		if err := s.RecordLayout(ctx, rec); err != nil {
			t.Fatalf("RecordLayout(%s) error = %v", rec.ID, err)
		}
	}

	stats, err := s.Stats(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.TotalLayouts != 3 {
		t.Errorf("TotalLayouts = %d, want 3", stats.TotalLayouts)
	}
	if stats.UniqueVisitors != 2 {
		t.Errorf("UniqueVisitors = %d, want 2", stats.UniqueVisitors)
	}
	if stats.LayoutsWeek != 3 {
		t.Errorf("LayoutsWeek = %d, want 3", stats.LayoutsWeek)
	}
	if stats.TotalFallbacks != 1 {
		t.Errorf("TotalFallbacks = %d, want 1", stats.TotalFallbacks)
	}

	if len(stats.PerIndex) != 2 {
		t.Fatalf("PerIndex has %d rows, want 2", len(stats.PerIndex))
	}
	first, second := stats.PerIndex[0], stats.PerIndex[1]
	if first.Placements != 3 || first.Fallbacks != 0 || first.AvgAttempts != 1 {
		t.Errorf("index 0 = %+v", first)
	}
	if second.Fallbacks != 1 {
		t.Errorf("index 1 fallbacks = %d, want 1", second.Fallbacks)
	}
	if got, want := second.FallbackRate, 1.0/3.0; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("index 1 fallback rate = %g, want %g", got, want)
	}

	if len(stats.Recent) != 3 || stats.Recent[0].ID != "c" {
		t.Fatalf("Recent = %+v, want c first", stats.Recent)
	}
	if stats.Recent[1].Fallbacks != 1 || stats.Recent[1].Attempts != 201 {
		t.Errorf("Recent[1] = %+v", stats.Recent[1])
	}
	if d := stats.Recent[0].CreatedAt.Sub(now.Add(2 * time.Second)); d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("CreatedAt round-trip off by %s", d)
	}
}

func TestStoreDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := LayoutRecord{ID: "dup", Visitor: "v", CreatedAt: time.Now(), Result: testResult()}
	if err := s.RecordLayout(ctx, rec); err != nil {
		t.Fatalf("first RecordLayout() error = %v", err)
	}
	if err := s.RecordLayout(ctx, rec); err == nil {
		t.Error("second RecordLayout() with the same id should fail")
	}

	stats, err := s.Stats(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if stats.PerIndex[0].Placements != 1 {
		t.Errorf("failed insert left %d placements at index 0", stats.PerIndex[0].Placements)
	}
}

func TestStorePurge(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()

	old := LayoutRecord{ID: "old", Visitor: "v", CreatedAt: now.Add(-48 * time.Hour), Result: testResult(0)}
	fresh := LayoutRecord{ID: "fresh", Visitor: "v", CreatedAt: now, Result: testResult()}
	for _, rec := range []LayoutRecord{old, fresh} {
		if err := s.RecordLayout(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Purge(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Purge() removed %d, want 1", n)
	}

	stats, err := s.Stats(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalLayouts != 1 || stats.TotalFallbacks != 0 {
		t.Errorf("after purge: %d layouts, %d fallbacks", stats.TotalLayouts, stats.TotalFallbacks)
	}
	if stats.PerIndex[0].Placements != 1 {
		t.Errorf("purged placements still counted: %+v", stats.PerIndex[0])
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.RecordLayout(ctx, LayoutRecord{ID: "x", Visitor: "v", CreatedAt: time.Now(), Result: testResult()}); err != nil {
		t.Fatal(err)
	}

	found, err := s.DeleteLayout(ctx, "x")
	if err != nil || !found {
		t.Fatalf("DeleteLayout(x) = %v, %v", found, err)
	}
	found, err = s.DeleteLayout(ctx, "x")
	if err != nil || found {
		t.Errorf("second DeleteLayout(x) = %v, %v, want false", found, err)
	}

	stats, err := s.Stats(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalLayouts != 0 || len(stats.PerIndex) != 0 {
		t.Errorf("after delete: %+v", stats)
	}
}

func TestStoreDSN(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"", ":memory:?_time_format=sqlite"},
		{"layouts.db", "layouts.db?_time_format=sqlite"},
		{"file:layouts.db?cache=shared", "file:layouts.db?cache=shared&_time_format=sqlite"},
	}

	for _, tt := range tests {
		if got := storeDSN(tt.path); got != tt.want {
			t.Errorf("storeDSN(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestOpenStoreURIWithQuery(t *testing.T) {
	ctx := context.Background()
	path := "file:" + filepath.Join(t.TempDir(), "layouts.db") + "?cache=shared"

	s, err := OpenStore(ctx, path)
	if err != nil {
		t.Fatalf("OpenStore(%q) error = %v", path, err)
	}
	defer s.Close()

	now := time.Now()
	if err := s.RecordLayout(ctx, LayoutRecord{ID: "q", Visitor: "v", CreatedAt: now, Result: testResult()}); err != nil {
		t.Fatalf("RecordLayout() error = %v", err)
	}
	stats, err := s.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalLayouts != 1 || stats.LayoutsToday != 1 {
		t.Errorf("stats = %d total, %d today, want 1 and 1", stats.TotalLayouts, stats.LayoutsToday)
	}
}
