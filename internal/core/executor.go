package core

import (
	"context"
	"errors"
	"fmt"

	retry "github.com/StirlingMarketingGroup/go-retry"
	"go.uber.org/zap"
)

// Executor applies a deletion set against the mail store. Idempotent:
// ids that are already gone are skipped, not failed, so a run can be
// repeated or raced by another process without error.
type Executor struct {
	store       MailStore
	progress    ProgressReporter
	logger      *zap.Logger
	moveRetries int

	// OnOutcome, when set, receives the outcome of every attempt.
	// Used by the orchestrator to feed the run journal.
	OnOutcome func(messageID string, outcome Outcome)
}

// NewExecutor creates a deletion executor. moveRetries bounds how many
// times a transient move failure is retried before the item is skipped.
func NewExecutor(store MailStore, progress ProgressReporter, logger *zap.Logger, moveRetries int) *Executor {
	if moveRetries < 1 {
		moveRetries = 1
	}
	return &Executor{
		store:       store,
		progress:    progress,
		logger:      logger,
		moveRetries: moveRetries,
	}
}

// Execute processes every id in the set. For each id the live message
// is re-fetched and its categories re-checked against the keep pattern
// before anything is touched: the cached record from retrieval may be
// stale if a user protected the message in the meantime. No single
// item's failure aborts the run; only context cancellation stops it,
// leaving already-applied deletions in place.
func (e *Executor) Execute(ctx context.Context, set DeletionSet, policy *RetentionPolicy) (DeletionResult, error) {
	var res DeletionResult
	ids := set.IDs()
	total := len(ids)
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempted++

		rec, err := e.store.FetchByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Another process got there first; already absent.
				res.NotFound++
				e.emit(id, OutcomeNotFound)
			} else {
				e.logger.Debug("Fetch before delete failed, skipping",
					zap.String("id", id),
					zap.Error(err))
				res.Errors++
				e.emit(id, OutcomeError)
			}
			res.Skipped++
			e.report(i+1, total, res)
			continue
		}

		if policy.IsExempt(rec.Categories) {
			res.Exempt++
			res.Skipped++
			e.emit(id, OutcomeExempt)
			e.report(i+1, total, res)
			continue
		}

		if err := e.store.SetReadState(ctx, id, policy.MarkRead); err != nil {
			// Read state is cosmetic; the move still proceeds.
			e.logger.Warn("Set read state failed",
				zap.String("id", id),
				zap.Error(err))
		}

		moveErr := retry.Retry(func() error {
			return e.store.MoveToHolding(ctx, id)
		}, e.moveRetries, func(err error) error {
			if errors.Is(err, ErrNotFound) {
				// Vanished after the re-fetch; not transient, stop retrying.
				return err
			}
			e.logger.Warn("Move to holding failed, retrying",
				zap.String("id", id),
				zap.Error(err))
			return nil
		}, func() error {
			return nil
		})
		if errors.Is(moveErr, ErrNotFound) {
			res.NotFound++
			res.Skipped++
			e.emit(id, OutcomeNotFound)
		} else if moveErr != nil {
			e.logger.Warn("Move to holding failed, skipping",
				zap.String("id", id),
				zap.String("subject", rec.Subject),
				zap.Error(moveErr))
			res.Errors++
			res.Skipped++
			e.emit(id, OutcomeError)
		} else {
			res.Succeeded++
			e.emit(id, OutcomeDeleted)
		}
		e.report(i+1, total, res)
	}
	return res, nil
}

func (e *Executor) report(current, total int, res DeletionResult) {
	safeReport(e.progress, current, total,
		fmt.Sprintf("%d/%d Deleted %d.", current, total, res.Succeeded))
}

func (e *Executor) emit(id string, outcome Outcome) {
	if e.OnOutcome != nil {
		e.OnOutcome(id, outcome)
	}
}
