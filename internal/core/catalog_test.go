package core

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func catalogIDs(records []MessageRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}

func populatedStore() *fakeStore {
	store := newFakeStore()
	store.add("alpha", msg("a1", "c1", at(100), ""))
	store.add("alpha", msg("a2", "c1", at(200), ""))
	store.add("beta", msg("b1", "c2", at(300), "Keep"))
	store.add("beta", msg("b2", "c3", at(400), ""))
	return store
}

func TestBuildersProduceSameRecordSet(t *testing.T) {
	policy := &RetentionPolicy{KeepCategoryPattern: keepPattern}

	store := populatedStore()
	exhaustive, err := NewExhaustiveBuilder(store, nil, testLogger()).Build(context.Background(), store.folders, policy)
	if err != nil {
		t.Fatalf("exhaustive build failed: %v", err)
	}

	store = populatedStore()
	twoPhase, err := NewTwoPhaseBuilder(store, nil, testLogger()).Build(context.Background(), store.folders, policy)
	if err != nil {
		t.Fatalf("two-phase build failed: %v", err)
	}

	got, want := catalogIDs(twoPhase), catalogIDs(exhaustive)
	if len(got) != len(want) {
		t.Fatalf("strategies disagree: %v vs %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("strategies disagree: %v vs %v", got, want)
		}
	}
}

func TestBuildersApplyStartDatePreFilter(t *testing.T) {
	start := at(250)
	policy := &RetentionPolicy{KeepCategoryPattern: keepPattern, RetrievalStartDate: &start}

	for _, strategy := range []string{"exhaustive", "two_phase"} {
		st := strategy
		t.Run(st, func(t *testing.T) {
			store := populatedStore()
			var builder CatalogBuilder
			if st == "exhaustive" {
				builder = NewExhaustiveBuilder(store, nil, testLogger())
			} else {
				builder = NewTwoPhaseBuilder(store, nil, testLogger())
			}
			records, err := builder.Build(context.Background(), store.folders, policy)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			want := []string{"b1", "b2"}
			got := catalogIDs(records)
			if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
				t.Fatalf("pre-filter mismatch: got %v want %v", got, want)
			}
		})
	}
}

func TestTwoPhaseSkipsFetchForPreFilteredItems(t *testing.T) {
	start := at(250)
	policy := &RetentionPolicy{KeepCategoryPattern: keepPattern, RetrievalStartDate: &start}
	store := populatedStore()

	if _, err := NewTwoPhaseBuilder(store, nil, testLogger()).Build(context.Background(), store.folders, policy); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	// Only the two surviving ids get a full-fidelity fetch.
	if len(store.fetches) != 2 {
		t.Fatalf("expected 2 fetches, got %d (%v)", len(store.fetches), store.fetches)
	}
}

func TestExhaustiveDropsFailedFolderAndContinues(t *testing.T) {
	store := populatedStore()
	store.enumErr["alpha"] = errors.New("folder gone")

	records, err := NewExhaustiveBuilder(store, nil, testLogger()).Build(context.Background(), store.folders, &RetentionPolicy{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	got := catalogIDs(records)
	if len(got) != 2 || got[0] != "b1" || got[1] != "b2" {
		t.Fatalf("expected beta records only, got %v", got)
	}
}

func TestBuildersDropUnfetchableItemsSilently(t *testing.T) {
	store := populatedStore()
	store.fetchErr["a2"] = errors.New("permission denied")

	records, err := NewExhaustiveBuilder(store, nil, testLogger()).Build(context.Background(), store.folders, &RetentionPolicy{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, rec := range records {
		if rec.ID == "a2" {
			t.Fatalf("unfetchable item survived: %v", rec)
		}
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}

func TestBuilderSurvivesBrokenReporter(t *testing.T) {
	store := populatedStore()
	records, err := NewExhaustiveBuilder(store, panicProgress{}, testLogger()).Build(context.Background(), store.folders, &RetentionPolicy{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected all 4 records despite reporter panics, got %d", len(records))
	}
}

func TestBuilderReportsPerItem(t *testing.T) {
	store := populatedStore()
	progress := &recordingProgress{}
	if _, err := NewExhaustiveBuilder(store, progress, testLogger()).Build(context.Background(), store.folders, &RetentionPolicy{}); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(progress.calls) != 4 {
		t.Fatalf("expected 4 progress reports, got %d", len(progress.calls))
	}
}

func TestBuilderStopsOnCancellation(t *testing.T) {
	store := populatedStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExhaustiveBuilder(store, nil, testLogger()).Build(ctx, store.folders, &RetentionPolicy{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
