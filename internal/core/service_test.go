package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingJournal struct {
	runs      []*RunSummary
	deletions map[string]Outcome
	writeErr  error
}

func newRecordingJournal() *recordingJournal {
	return &recordingJournal{deletions: map[string]Outcome{}}
}

func (j *recordingJournal) RecordRun(ctx context.Context, summary *RunSummary) error {
	_ = ctx
	j.runs = append(j.runs, summary)
	return j.writeErr
}

func (j *recordingJournal) RecordDeletion(ctx context.Context, runID, messageID string, outcome Outcome) error {
	_ = ctx
	_ = runID
	j.deletions[messageID] = outcome
	return j.writeErr
}

func newTestService(store *fakeStore, journal RunJournal) *CleanupService {
	builder := NewExhaustiveBuilder(store, nil, testLogger())
	exec := NewExecutor(store, nil, testLogger(), 1)
	svc := NewCleanupService(store, builder, exec, journal, testLogger())
	svc.Clock = func() time.Time { return at(1000) }
	return svc
}

func TestRunEndToEnd(t *testing.T) {
	store := populatedStore()
	journal := newRecordingJournal()
	svc := newTestService(store, journal)
	policy := &RetentionPolicy{KeepCategoryPattern: keepPattern, MarkRead: true}

	summary, err := svc.Run(context.Background(), policy, RunOptions{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// c1 has two messages: the older one goes. c2 and c3 are singletons.
	if summary.Retrieved != 4 || summary.Conversations != 3 || summary.Planned != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Result.Succeeded != 1 || summary.Result.Attempted != 1 {
		t.Fatalf("unexpected result: %+v", summary.Result)
	}
	if len(store.moved) != 1 || store.moved[0] != "a1" {
		t.Fatalf("unexpected moves: %v", store.moved)
	}
	if len(journal.runs) != 1 || journal.deletions["a1"] != OutcomeDeleted {
		t.Fatalf("journal not written: runs=%d deletions=%v", len(journal.runs), journal.deletions)
	}
	if summary.RunID == "" {
		t.Fatalf("missing run id")
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	store := populatedStore()
	journal := newRecordingJournal()
	svc := newTestService(store, journal)
	policy := &RetentionPolicy{KeepCategoryPattern: keepPattern}

	summary, err := svc.Run(context.Background(), policy, RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Planned != 1 {
		t.Fatalf("expected a plan of 1, got %+v", summary)
	}
	if len(store.moved) != 0 || len(store.readStates) != 0 {
		t.Fatalf("dry run mutated the store: moved=%v reads=%v", store.moved, store.readStates)
	}
	if summary.Result.Attempted != 0 {
		t.Fatalf("dry run attempted deletions: %+v", summary.Result)
	}
	if len(journal.runs) != 1 || !journal.runs[0].DryRun {
		t.Fatalf("dry run not journaled: %+v", journal.runs)
	}
}

func TestRunFolderListingFailureIsFatal(t *testing.T) {
	store := populatedStore()
	store.listErr = errors.New("connection reset")
	svc := newTestService(store, nil)

	if _, err := svc.Run(context.Background(), &RetentionPolicy{}, RunOptions{}); err == nil {
		t.Fatalf("expected fatal error on folder listing failure")
	}
	if len(store.moved) != 0 {
		t.Fatalf("run mutated the store after fatal setup error")
	}
}

func TestRunSurvivesJournalFailure(t *testing.T) {
	store := populatedStore()
	journal := newRecordingJournal()
	journal.writeErr = errors.New("disk full")
	svc := newTestService(store, journal)
	policy := &RetentionPolicy{KeepCategoryPattern: keepPattern}

	summary, err := svc.Run(context.Background(), policy, RunOptions{})
	if err != nil {
		t.Fatalf("journal failure aborted the run: %v", err)
	}
	if summary.Result.Succeeded != 1 {
		t.Fatalf("unexpected result: %+v", summary.Result)
	}
}

func TestRunEmptyStore(t *testing.T) {
	store := newFakeStore()
	store.folders = []Folder{{ID: "alpha", Name: "alpha"}}
	svc := newTestService(store, nil)

	summary, err := svc.Run(context.Background(), &RetentionPolicy{KeepCategoryPattern: keepPattern}, RunOptions{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Planned != 0 || summary.Result.Attempted != 0 || summary.Result.Succeeded != 0 {
		t.Fatalf("expected empty result, got %+v", summary)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := populatedStore()
	svc := newTestService(store, nil)
	policy := &RetentionPolicy{KeepCategoryPattern: keepPattern}

	first, err := svc.Run(context.Background(), policy, RunOptions{})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := svc.Run(context.Background(), policy, RunOptions{})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if first.Result.Succeeded != 1 || second.Result.Succeeded != 0 || second.Planned != 0 {
		t.Fatalf("second run should find nothing left: first=%+v second=%+v", first.Result, second.Result)
	}
}
