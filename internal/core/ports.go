package core

import (
	"context"
	"errors"
)

// ErrNotFound is returned by MailStore.FetchByID when the message no
// longer exists on the store. The executor treats it as "already
// gone", never as a run failure.
var ErrNotFound = errors.New("message not found")

// AuthError indicates the store rejected our credentials. It is the
// one class of failure that aborts a run before any retrieval.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// MailStore is the narrow mail-store surface required by the engine.
// Every call is a single independent remote operation with its own
// failure domain; no call spans multiple messages.
type MailStore interface {
	// ListFolders returns the folders to clean. The root folder is
	// included only when includeRoot is set.
	ListFolders(ctx context.Context, includeRoot bool) ([]Folder, error)

	// CountItems returns the number of messages in a folder. Used only
	// for progress totals.
	CountItems(ctx context.Context, folder Folder) (int, error)

	// EnumerateItems returns the ids of every message in a folder.
	EnumerateItems(ctx context.Context, folder Folder) ([]string, error)

	// EnumerateProjection returns the lightweight (id, timestamp)
	// projection for every message in a folder. Cheaper than fetching
	// full metadata, but carries no conversation id.
	EnumerateProjection(ctx context.Context, folder Folder) ([]ItemProjection, error)

	// FetchByID retrieves the live metadata for a single message.
	// Returns ErrNotFound when the message no longer exists.
	FetchByID(ctx context.Context, id string) (*MessageRecord, error)

	// MoveToHolding moves a message to the recoverable holding folder.
	// Never a permanent erase.
	MoveToHolding(ctx context.Context, id string) error

	// SetReadState marks a message read or unread.
	SetReadState(ctx context.Context, id string, read bool) error
}

// ProgressReporter renders run progress. Report must never block the
// run; callers additionally guard against panics so a broken reporter
// cannot abort retrieval or deletion.
type ProgressReporter interface {
	Report(current, total int, message string)
}

// CatalogBuilder produces the normalized record set for one run.
// Implementations differ only in retrieval strategy; the final record
// set is identical modulo the RetrievalStartDate pre-filter.
type CatalogBuilder interface {
	Build(ctx context.Context, folders []Folder, policy *RetentionPolicy) ([]MessageRecord, error)
}

// RunJournal records run outcomes for later inspection. The engine
// only ever writes to it; journal contents never influence a decision.
type RunJournal interface {
	RecordRun(ctx context.Context, summary *RunSummary) error
	RecordDeletion(ctx context.Context, runID, messageID string, outcome Outcome) error
}

// safeReport invokes a reporter, swallowing panics. Reporting failures
// must never abort a run.
func safeReport(r ProgressReporter, current, total int, message string) {
	if r == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	r.Report(current, total, message)
}
