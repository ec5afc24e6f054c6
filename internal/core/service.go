package core

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

// RunOptions carries per-invocation switches that are not part of the
// retention policy itself.
type RunOptions struct {
	IncludeRoot bool
	DryRun      bool
}

// CleanupService orchestrates one run: retrieve, group, decide,
// execute, journal. Phases run in strict order over a single snapshot;
// no deletion starts before the decision is complete.
type CleanupService struct {
	store    MailStore
	builder  CatalogBuilder
	executor *Executor
	journal  RunJournal
	logger   *zap.Logger

	// Clock is replaceable in tests.
	Clock func() time.Time
}

// NewCleanupService creates the run orchestrator. journal may be nil.
func NewCleanupService(store MailStore, builder CatalogBuilder, executor *Executor, journal RunJournal, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		store:    store,
		builder:  builder,
		executor: executor,
		journal:  journal,
		logger:   logger,
		Clock:    time.Now,
	}
}

// Run performs a full cleanup pass and returns its summary. Folder
// listing failure is fatal; everything downstream degrades per item or
// per folder. With opts.DryRun the deletion set is computed and
// reported but nothing on the store is touched.
func (s *CleanupService) Run(ctx context.Context, policy *RetentionPolicy, opts RunOptions) (*RunSummary, error) {
	start := s.Clock()
	runID := xid.New().String()

	folders, err := s.store.ListFolders(ctx, opts.IncludeRoot)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	records, err := s.builder.Build(ctx, folders, policy)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	s.logger.Info("Catalog built",
		zap.String("run_id", runID),
		zap.String("items", humanize.Comma(int64(len(records)))))

	groups := GroupByConversation(records)
	set := BuildDeletionSet(groups, policy)
	s.logger.Info("Deletion plan ready",
		zap.String("run_id", runID),
		zap.Int("conversations", len(groups)),
		zap.Int("to_delete", len(set)))

	summary := &RunSummary{
		RunID:         runID,
		Folders:       len(folders),
		Retrieved:     len(records),
		Conversations: len(groups),
		Planned:       len(set),
		DryRun:        opts.DryRun,
		StartedAt:     start,
	}

	if !opts.DryRun {
		if s.journal != nil {
			prev := s.executor.OnOutcome
			s.executor.OnOutcome = func(id string, outcome Outcome) {
				if err := s.journal.RecordDeletion(ctx, runID, id, outcome); err != nil {
					s.logger.Warn("Journal write failed", zap.Error(err))
				}
			}
			defer func() { s.executor.OnOutcome = prev }()
		}
		result, execErr := s.executor.Execute(ctx, set, policy)
		summary.Result = result
		if execErr != nil {
			summary.Duration = s.Clock().Sub(start)
			s.record(ctx, summary)
			return summary, fmt.Errorf("execute deletions: %w", execErr)
		}
	}

	summary.Duration = s.Clock().Sub(start)
	s.record(ctx, summary)
	return summary, nil
}

func (s *CleanupService) record(ctx context.Context, summary *RunSummary) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordRun(ctx, summary); err != nil {
		s.logger.Warn("Journal write failed", zap.Error(err))
	}
}
