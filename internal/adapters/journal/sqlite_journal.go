package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/mailsweep/internal/core"
	"go.uber.org/zap"
)

// SQLiteJournal is a SQLite implementation of the RunJournal interface.
// It records one row per run and one row per deletion attempt, and
// prunes rows older than the retention window on a background ticker.
type SQLiteJournal struct {
	db        *sql.DB
	logger    *zap.Logger
	retention time.Duration
	pruneFreq time.Duration
	stopCh    chan struct{}
}

// NewSQLiteJournal creates a new SQLite run journal
func NewSQLiteJournal(dbPath string, logger *zap.Logger, retention, pruneFreq time.Duration) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := createTables(db, `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at TIMESTAMP,
			duration_ms INTEGER,
			folders INTEGER,
			retrieved INTEGER,
			conversations INTEGER,
			planned INTEGER,
			attempted INTEGER,
			succeeded INTEGER,
			skipped INTEGER,
			dry_run BOOLEAN
		)
	`, `
		CREATE TABLE IF NOT EXISTS deletions (
			run_id TEXT,
			message_id TEXT,
			outcome TEXT,
			recorded_at TIMESTAMP
		)
	`, `
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)
	`, `
		CREATE INDEX IF NOT EXISTS idx_deletions_recorded_at ON deletions(recorded_at)
	`); err != nil {
		db.Close()
		return nil, err
	}

	j := &SQLiteJournal{
		db:        db,
		logger:    logger,
		retention: retention,
		pruneFreq: pruneFreq,
		stopCh:    make(chan struct{}),
	}

	// Start background pruning
	go j.startPruneTask()

	return j, nil
}

// RecordRun stores one run summary row
func (j *SQLiteJournal) RecordRun(ctx context.Context, summary *core.RunSummary) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(run_id, started_at, duration_ms, folders, retrieved, conversations,
			 planned, attempted, succeeded, skipped, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		summary.RunID,
		summary.StartedAt.UTC().Format(time.RFC3339),
		summary.Duration.Milliseconds(),
		summary.Folders,
		summary.Retrieved,
		summary.Conversations,
		summary.Planned,
		summary.Result.Attempted,
		summary.Result.Succeeded,
		summary.Result.Skipped,
		summary.DryRun,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run row: %w", err)
	}
	return nil
}

// RecordDeletion stores one deletion outcome row
func (j *SQLiteJournal) RecordDeletion(ctx context.Context, runID, messageID string, outcome core.Outcome) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO deletions (run_id, message_id, outcome, recorded_at)
		VALUES (?, ?, ?, ?)
	`, runID, messageID, string(outcome), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert deletion row: %w", err)
	}
	return nil
}

// Prune removes rows older than the retention window
func (j *SQLiteJournal) Prune(ctx context.Context) error {
	horizon := time.Now().Add(-j.retention).UTC().Format(time.RFC3339)

	result, err := j.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at <= ?`, horizon)
	if err != nil {
		return fmt.Errorf("failed to prune run rows: %w", err)
	}
	if _, err := j.db.ExecContext(ctx, `DELETE FROM deletions WHERE recorded_at <= ?`, horizon); err != nil {
		return fmt.Errorf("failed to prune deletion rows: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		j.logger.Warn("Failed to get rows affected during prune", zap.Error(err))
	} else {
		j.logger.Debug("Pruned journal rows", zap.Int64("runs_pruned", rowsAffected))
	}

	return nil
}

// startPruneTask starts a background task to prune expired rows
func (j *SQLiteJournal) startPruneTask() {
	ticker := time.NewTicker(j.pruneFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Prune(context.Background()); err != nil {
				j.logger.Error("Failed to prune journal", zap.Error(err))
			}
		case <-j.stopCh:
			return
		}
	}
}

// Stop stops the background prune task and closes the database connection
func (j *SQLiteJournal) Stop() {
	close(j.stopCh)
	if err := j.db.Close(); err != nil {
		j.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}

// createTables runs the given DDL statements in order.
func createTables(db *sql.DB, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create journal schema: %w", err)
		}
	}
	return nil
}

var _ core.RunJournal = (*SQLiteJournal)(nil)
