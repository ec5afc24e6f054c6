package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/mailsweep/internal/core"
	"go.uber.org/zap"
)

// MySQLJournal is a MySQL implementation of the RunJournal interface
type MySQLJournal struct {
	db        *sql.DB
	logger    *zap.Logger
	retention time.Duration
	pruneFreq time.Duration
	stopCh    chan struct{}
}

// NewMySQLJournal creates a new MySQL run journal
func NewMySQLJournal(dsn string, logger *zap.Logger, retention, pruneFreq time.Duration) (*MySQLJournal, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	if err := createTables(db, `
		CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR(32) PRIMARY KEY,
			started_at TIMESTAMP,
			duration_ms BIGINT,
			folders INT,
			retrieved INT,
			conversations INT,
			planned INT,
			attempted INT,
			succeeded INT,
			skipped INT,
			dry_run BOOLEAN,
			INDEX idx_runs_started_at (started_at)
		)
	`, `
		CREATE TABLE IF NOT EXISTS deletions (
			run_id VARCHAR(32),
			message_id VARCHAR(512),
			outcome VARCHAR(16),
			recorded_at TIMESTAMP,
			INDEX idx_deletions_recorded_at (recorded_at)
		)
	`); err != nil {
		db.Close()
		return nil, err
	}

	j := &MySQLJournal{
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
func (j *MySQLJournal) RecordRun(ctx context.Context, summary *core.RunSummary) error {
	_, err := j.db.ExecContext(ctx, `
		REPLACE INTO runs
			(run_id, started_at, duration_ms, folders, retrieved, conversations,
			 planned, attempted, succeeded, skipped, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		summary.RunID,
		summary.StartedAt.UTC(),
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
func (j *MySQLJournal) RecordDeletion(ctx context.Context, runID, messageID string, outcome core.Outcome) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO deletions (run_id, message_id, outcome, recorded_at)
		VALUES (?, ?, ?, ?)
	`, runID, messageID, string(outcome), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert deletion row: %w", err)
	}
	return nil
}

// Prune removes rows older than the retention window
func (j *MySQLJournal) Prune(ctx context.Context) error {
	horizon := time.Now().Add(-j.retention).UTC()

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
func (j *MySQLJournal) startPruneTask() {
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
func (j *MySQLJournal) Stop() {
	close(j.stopCh)
	if err := j.db.Close(); err != nil {
		j.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}

var _ core.RunJournal = (*MySQLJournal)(nil)
