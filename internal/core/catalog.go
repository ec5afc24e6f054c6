package core

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// ExhaustiveBuilder retrieves full metadata for every message in every
// folder, one fetch per item. Correct against any store, at the cost
// of O(n) full-fidelity requests. Required when the store cannot
// bulk-project conversation ids.
type ExhaustiveBuilder struct {
	store    MailStore
	progress ProgressReporter
	logger   *zap.Logger
}

// NewExhaustiveBuilder creates an exhaustive catalog builder.
func NewExhaustiveBuilder(store MailStore, progress ProgressReporter, logger *zap.Logger) *ExhaustiveBuilder {
	return &ExhaustiveBuilder{
		store:    store,
		progress: progress,
		logger:   logger,
	}
}

// Build enumerates all folders and fetches full metadata per item.
// A folder whose enumeration fails is dropped with a warning while the
// remaining folders proceed; a single unfetchable message is dropped
// silently, as if already absent.
func (b *ExhaustiveBuilder) Build(ctx context.Context, folders []Folder, policy *RetentionPolicy) ([]MessageRecord, error) {
	total := countTotal(ctx, b.store, folders)
	b.logger.Info("Scanning folders",
		zap.Int("folders", len(folders)),
		zap.String("items", humanize.Comma(int64(total))))

	records := make([]MessageRecord, 0, total)
	processed := 0
	for _, folder := range folders {
		ids, err := b.store.EnumerateItems(ctx, folder)
		if err != nil {
			b.logger.Warn("Folder enumeration failed, dropping folder",
				zap.String("folder", folder.Name),
				zap.Error(err))
			continue
		}
		kept := 0
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return records, err
			}
			processed++
			safeReport(b.progress, processed, total, fmt.Sprintf("Processing %d of %d", processed, total))
			rec, err := b.store.FetchByID(ctx, id)
			if err != nil {
				// Treated as already absent, not as a run failure.
				b.logger.Debug("Dropping unfetchable message",
					zap.String("id", id),
					zap.Error(err))
				continue
			}
			if policy != nil && policy.RetrievalStartDate != nil && rec.CreationTime.Before(*policy.RetrievalStartDate) {
				continue
			}
			records = append(records, *rec)
			kept++
		}
		b.logger.Info("Folder scanned",
			zap.String("folder", folder.Name),
			zap.Int("items", len(ids)),
			zap.Int("kept", kept))
	}
	return records, nil
}

// TwoPhaseBuilder first bulk-projects (id, timestamp) tuples for every
// message, applies the RetrievalStartDate pre-filter on the cheap
// projection, then fetches full metadata only for surviving ids. A
// performance optimization over ExhaustiveBuilder; the final record
// set is the same modulo the age pre-filter.
type TwoPhaseBuilder struct {
	store    MailStore
	progress ProgressReporter
	logger   *zap.Logger
}

// NewTwoPhaseBuilder creates a two-phase catalog builder.
func NewTwoPhaseBuilder(store MailStore, progress ProgressReporter, logger *zap.Logger) *TwoPhaseBuilder {
	return &TwoPhaseBuilder{
		store:    store,
		progress: progress,
		logger:   logger,
	}
}

// Build runs the projection pass followed by targeted metadata fetches.
// Folder and per-item failure handling matches ExhaustiveBuilder.
func (b *TwoPhaseBuilder) Build(ctx context.Context, folders []Folder, policy *RetentionPolicy) ([]MessageRecord, error) {
	var survivors []string
	for i, folder := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		safeReport(b.progress, i+1, len(folders), fmt.Sprintf("Scanning folder %s", folder.Name))
		refs, err := b.store.EnumerateProjection(ctx, folder)
		if err != nil {
			b.logger.Warn("Folder projection failed, dropping folder",
				zap.String("folder", folder.Name),
				zap.Error(err))
			continue
		}
		kept := 0
		for _, ref := range refs {
			if policy != nil && policy.RetrievalStartDate != nil && ref.CreationTime.Before(*policy.RetrievalStartDate) {
				continue
			}
			survivors = append(survivors, ref.ID)
			kept++
		}
		b.logger.Info("Folder projected",
			zap.String("folder", folder.Name),
			zap.Int("items", len(refs)),
			zap.Int("kept", kept))
	}

	b.logger.Info("Fetching metadata for candidates",
		zap.String("items", humanize.Comma(int64(len(survivors)))))
	records := make([]MessageRecord, 0, len(survivors))
	for i, id := range survivors {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		safeReport(b.progress, i+1, len(survivors), fmt.Sprintf("Fetching %d of %d", i+1, len(survivors)))
		rec, err := b.store.FetchByID(ctx, id)
		if err != nil {
			b.logger.Debug("Dropping unfetchable message",
				zap.String("id", id),
				zap.Error(err))
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

// countTotal sums folder item counts for progress totals. Count
// failures only degrade the progress denominator, never the run.
func countTotal(ctx context.Context, store MailStore, folders []Folder) int {
	total := 0
	for _, folder := range folders {
		n, err := store.CountItems(ctx, folder)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}
