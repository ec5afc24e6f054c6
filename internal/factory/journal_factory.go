package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/mailsweep/internal/adapters/journal"
	"github.com/mikey/mailsweep/internal/config"
	"github.com/mikey/mailsweep/internal/core"
	"go.uber.org/zap"
)

// JournalFactory creates run journals based on configuration
type JournalFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewJournalFactory creates a new journal factory
func NewJournalFactory(cfg *config.Config, logger *zap.Logger) *JournalFactory {
	return &JournalFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRunJournal creates a run journal based on the configuration
func (f *JournalFactory) CreateRunJournal() (core.RunJournal, error) {
	journalConfig := f.cfg.GetJournal()

	if journalConfig.Type == "none" {
		return journal.NewNoopJournal(), nil
	}

	retention, err := f.cfg.GetDuration("journal.retention")
	if err != nil {
		return nil, fmt.Errorf("invalid journal retention: %w", err)
	}
	pruneFreq, err := f.cfg.GetDuration("journal.prune_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid journal prune frequency: %w", err)
	}

	switch journalConfig.Type {
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(journalConfig.SQLite), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return journal.NewSQLiteJournal(journalConfig.SQLite, f.logger, retention, pruneFreq)
	case "mysql":
		return journal.NewMySQLJournal(journalConfig.MySQLDSN, f.logger, retention, pruneFreq)
	default:
		return nil, fmt.Errorf("unsupported journal type: %s", journalConfig.Type)
	}
}
