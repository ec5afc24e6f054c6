package journal

import (
	"context"

	"github.com/mikey/mailsweep/internal/core"
)

// NoopJournal discards all journal writes. Used when journaling is
// disabled; the engine never reads the journal, so nothing changes.
type NoopJournal struct{}

// NewNoopJournal creates a journal that records nothing.
func NewNoopJournal() *NoopJournal {
	return &NoopJournal{}
}

// RecordRun does nothing.
func (*NoopJournal) RecordRun(ctx context.Context, summary *core.RunSummary) error {
	_ = ctx
	_ = summary
	return nil
}

// RecordDeletion does nothing.
func (*NoopJournal) RecordDeletion(ctx context.Context, runID, messageID string, outcome core.Outcome) error {
	_ = ctx
	_ = runID
	_ = messageID
	_ = outcome
	return nil
}

var _ core.RunJournal = (*NoopJournal)(nil)
