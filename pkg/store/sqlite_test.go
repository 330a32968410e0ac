package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gilchrisn/immunization-sim/pkg/centrality"
	"github.com/gilchrisn/immunization-sim/pkg/montecarlo"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs", "immunesim.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(measure centrality.MeasureName, counts []int) *montecarlo.Result {
	stats, _ := montecarlo.Summarize(counts)
	return &montecarlo.Result{
		Measure:         measure,
		NodeCount:       10,
		EdgeProbability: 0.5,
		InfectionRate:   0.1,
		Days:            3,
		Trials:          len(counts),
		Seed:            1<<63 + 5,
		Counts:          counts,
		Statistics:      stats,
		RuntimeMS:       12,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	original := sampleResult(centrality.Degree, []int{1, 2, 2, 4})
	id, err := s.SaveResult(ctx, original)
	if err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.ID != id {
		t.Errorf("Expected id %s, got %s", id, rec.ID)
	}
	if rec.Result.Seed != original.Seed {
		t.Errorf("Seed not preserved: %d vs %d", rec.Result.Seed, original.Seed)
	}
	if !reflect.DeepEqual(rec.Result.Statistics, original.Statistics) {
		t.Errorf("Statistics not preserved:\n got %+v\nwant %+v", rec.Result.Statistics, original.Statistics)
	}
	if rec.Result.Counts != nil {
		t.Error("Per-trial counts should not be stored")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, m := range []centrality.MeasureName{centrality.Random, centrality.Degree, centrality.Degree} {
		if _, err := s.SaveResult(ctx, sampleResult(m, []int{3, 3})); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 runs, got %d", len(all))
	}

	degree, _ := s.List(ctx, "degree", 0)
	if len(degree) != 2 {
		t.Errorf("Expected 2 degree runs, got %d", len(degree))
	}

	limited, _ := s.List(ctx, "", 1)
	if len(limited) != 1 {
		t.Errorf("Expected 1 run with limit, got %d", len(limited))
	}
}

func TestListOrdersWithinOneSecond(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	stamps := []time.Time{base, base.Add(900 * time.Millisecond), base.Add(100 * time.Millisecond)}

	var ids []string
	for _, stamp := range stamps {
		s.now = func() time.Time { return stamp }
		id, err := s.SaveResult(ctx, sampleResult(centrality.Degree, []int{1, 2}))
		if err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{ids[1], ids[2], ids[0]}
	if len(runs) != len(want) {
		t.Fatalf("Expected %d runs, got %d", len(want), len(runs))
	}
	for i, rec := range runs {
		if rec.ID != want[i] {
			t.Errorf("Position %d: expected %s, got %s (created %s)", i, want[i], rec.ID, rec.CreatedAt)
		}
	}
	if !runs[2].CreatedAt.Equal(base) {
		t.Errorf("Whole-second timestamp not preserved: %s", runs[2].CreatedAt)
	}
}
