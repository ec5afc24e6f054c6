package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// fakeStore is an in-test MailStore with scriptable failures and
// recorded mutations.
type fakeStore struct {
	mu sync.Mutex

	folders []Folder
	listErr error

	items   map[string][]string // folder name -> message ids
	enumErr map[string]error    // folder name -> enumeration error

	records  map[string]*MessageRecord
	fetchErr map[string]error

	moveFailures map[string]int // id -> remaining transient move failures
	moveErr      map[string]error

	moved      []string
	moveCalls  map[string]int
	readStates map[string]bool
	fetches    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:        map[string][]string{},
		enumErr:      map[string]error{},
		records:      map[string]*MessageRecord{},
		fetchErr:     map[string]error{},
		moveFailures: map[string]int{},
		moveErr:      map[string]error{},
		moveCalls:    map[string]int{},
		readStates:   map[string]bool{},
	}
}

func (f *fakeStore) add(folder string, rec MessageRecord) {
	rec.Folder = folder
	f.items[folder] = append(f.items[folder], rec.ID)
	r := rec
	f.records[rec.ID] = &r
	found := false
	for _, fl := range f.folders {
		if fl.Name == folder {
			found = true
		}
	}
	if !found {
		f.folders = append(f.folders, Folder{ID: folder, Name: folder})
	}
}

func (f *fakeStore) ListFolders(ctx context.Context, includeRoot bool) ([]Folder, error) {
	_ = ctx
	_ = includeRoot
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.folders, nil
}

func (f *fakeStore) CountItems(ctx context.Context, folder Folder) (int, error) {
	_ = ctx
	return len(f.items[folder.Name]), nil
}

func (f *fakeStore) EnumerateItems(ctx context.Context, folder Folder) ([]string, error) {
	_ = ctx
	if err := f.enumErr[folder.Name]; err != nil {
		return nil, err
	}
	return append([]string(nil), f.items[folder.Name]...), nil
}

func (f *fakeStore) EnumerateProjection(ctx context.Context, folder Folder) ([]ItemProjection, error) {
	_ = ctx
	if err := f.enumErr[folder.Name]; err != nil {
		return nil, err
	}
	var refs []ItemProjection
	for _, id := range f.items[folder.Name] {
		rec, ok := f.records[id]
		if !ok {
			continue
		}
		refs = append(refs, ItemProjection{ID: id, CreationTime: rec.CreationTime})
	}
	return refs, nil
}

func (f *fakeStore) FetchByID(ctx context.Context, id string) (*MessageRecord, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, id)
	if err := f.fetchErr[id]; err != nil {
		return nil, err
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	r := *rec
	return &r, nil
}

func (f *fakeStore) MoveToHolding(ctx context.Context, id string) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveCalls[id]++
	if n := f.moveFailures[id]; n > 0 {
		f.moveFailures[id] = n - 1
		return fmt.Errorf("transient move failure for %s", id)
	}
	if err := f.moveErr[id]; err != nil {
		return err
	}
	if _, ok := f.records[id]; !ok {
		return ErrNotFound
	}
	delete(f.records, id)
	f.moved = append(f.moved, id)
	return nil
}

func (f *fakeStore) SetReadState(ctx context.Context, id string, read bool) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readStates[id] = read
	return nil
}

func (f *fakeStore) sortedMoved() []string {
	out := append([]string(nil), f.moved...)
	sort.Strings(out)
	return out
}

// recordingProgress captures every Report call.
type recordingProgress struct {
	calls []string
}

func (r *recordingProgress) Report(current, total int, message string) {
	r.calls = append(r.calls, fmt.Sprintf("%d/%d %s", current, total, message))
}

// panicProgress simulates a broken reporter.
type panicProgress struct{}

func (panicProgress) Report(current, total int, message string) {
	panic("broken reporter")
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
