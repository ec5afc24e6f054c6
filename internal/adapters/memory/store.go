package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mikey/mailsweep/internal/core"
	"go.uber.org/zap"
)

// Store is an in-memory implementation of the MailStore interface.
// Used for sandbox runs and as a test double with real store
// semantics: moving a message removes it from its folder, and a second
// move of the same id reports not-found.
type Store struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	root    string
	holding string

	folders  map[string][]string // folder name -> ordered message ids
	messages map[string]core.MessageRecord
	read     map[string]bool
	held     []string
}

// NewStore creates an empty in-memory mail store.
func NewStore(root, holding string, logger *zap.Logger) *Store {
	return &Store{
		logger:   logger,
		root:     root,
		holding:  holding,
		folders:  map[string][]string{},
		messages: map[string]core.MessageRecord{},
		read:     map[string]bool{},
	}
}

// Seed places a message into a folder. Insertion order defines the
// store's native ordering.
func (s *Store) Seed(folder string, rec core.MessageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Folder = folder
	s.folders[folder] = append(s.folders[folder], rec.ID)
	s.messages[rec.ID] = rec
}

// ListFolders returns every seeded folder except the holding folder;
// the root folder is included only when includeRoot is set.
func (s *Store) ListFolders(ctx context.Context, includeRoot bool) ([]core.Folder, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.folders))
	for name := range s.folders {
		if name == s.holding {
			continue
		}
		if name == s.root && !includeRoot {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	folders := make([]core.Folder, 0, len(names))
	for _, name := range names {
		folders = append(folders, core.Folder{ID: name, Name: name})
	}
	return folders, nil
}

// CountItems returns the number of messages in a folder.
func (s *Store) CountItems(ctx context.Context, folder core.Folder) (int, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.folders[folder.Name]), nil
}

// EnumerateItems returns the ids of every message in a folder.
func (s *Store) EnumerateItems(ctx context.Context, folder core.Folder) ([]string, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.folders[folder.Name]...), nil
}

// EnumerateProjection returns the (id, timestamp) projection for a folder.
func (s *Store) EnumerateProjection(ctx context.Context, folder core.Folder) ([]core.ItemProjection, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	var refs []core.ItemProjection
	for _, id := range s.folders[folder.Name] {
		rec, ok := s.messages[id]
		if !ok {
			continue
		}
		refs = append(refs, core.ItemProjection{ID: id, CreationTime: rec.CreationTime})
	}
	return refs, nil
}

// FetchByID retrieves the live metadata for a single message.
func (s *Store) FetchByID(ctx context.Context, id string) (*core.MessageRecord, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.messages[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &rec, nil
}

// MoveToHolding moves a message to the holding folder. Moving an
// already-absent id reports core.ErrNotFound, matching a remote store
// raced by another client.
func (s *Store) MoveToHolding(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.messages[id]
	if !ok {
		return core.ErrNotFound
	}
	ids := s.folders[rec.Folder]
	for i, candidate := range ids {
		if candidate == id {
			s.folders[rec.Folder] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	delete(s.messages, id)
	s.held = append(s.held, id)
	s.logger.Debug("Moved message to holding",
		zap.String("id", id),
		zap.String("folder", rec.Folder))
	return nil
}

// SetReadState marks a message read or unread.
func (s *Store) SetReadState(ctx context.Context, id string, read bool) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[id]; !ok {
		return core.ErrNotFound
	}
	s.read[id] = read
	return nil
}

// Held returns the ids moved to the holding folder, in move order.
func (s *Store) Held() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.held...)
}

var _ core.MailStore = (*Store)(nil)
