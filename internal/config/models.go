package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/mikey/mailsweep/internal/core"
)

// dateLayout is the accepted form for boundary date filters.
const dateLayout = "2006-01-02"

// StoreConfig selects the mail store backend.
type StoreConfig struct {
	Type string
}

// IMAPConfig represents the configuration for the IMAP mail store
type IMAPConfig struct {
	Host          string
	Port          string
	Username      string
	Password      string
	TLS           bool
	RootFolder    string
	HoldingFolder string
	DialRetries   int
}

// CleanupConfig represents the run-level cleanup inputs
type CleanupConfig struct {
	IncludeRoot       bool
	KeepCategoryRegex string
	StartDate         string
	OlderThan         string
	MarkRead          bool
	DryRun            bool
	MoveRetries       int
}

// RetrievalConfig selects the catalog retrieval strategy.
type RetrievalConfig struct {
	Strategy string
}

// JournalConfig represents the configuration for the run journal
type JournalConfig struct {
	Type      string
	SQLite    string
	MySQLDSN  string
	Retention string
	PruneFreq string
}

// ProgressConfig represents the configuration for progress reporting
type ProgressConfig struct {
	Type  string
	Width int
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type: c.GetString("store.type"),
	}
}

// GetIMAP returns the IMAP configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Host:          c.GetString("imap.host"),
		Port:          c.GetString("imap.port"),
		Username:      c.GetString("imap.username"),
		Password:      c.GetString("imap.password"),
		TLS:           c.GetBool("imap.tls"),
		RootFolder:    c.GetString("imap.root_folder"),
		HoldingFolder: c.GetString("imap.holding_folder"),
		DialRetries:   c.GetInt("imap.dial_retries"),
	}
}

// GetCleanup returns the cleanup configuration
func (c *Config) GetCleanup() CleanupConfig {
	return CleanupConfig{
		IncludeRoot:       c.GetBool("cleanup.include_root"),
		KeepCategoryRegex: c.GetString("cleanup.keep_category_regex"),
		StartDate:         c.GetString("cleanup.start_date"),
		OlderThan:         c.GetString("cleanup.older_than"),
		MarkRead:          c.GetBool("cleanup.mark_read"),
		DryRun:            c.GetBool("cleanup.dry_run"),
		MoveRetries:       c.GetInt("cleanup.move_retries"),
	}
}

// GetRetrieval returns the retrieval configuration
func (c *Config) GetRetrieval() RetrievalConfig {
	return RetrievalConfig{
		Strategy: c.GetString("retrieval.strategy"),
	}
}

// GetJournal returns the journal configuration
func (c *Config) GetJournal() JournalConfig {
	return JournalConfig{
		Type:      c.GetString("journal.type"),
		SQLite:    c.GetString("journal.sqlite_path"),
		MySQLDSN:  c.GetString("journal.mysql_dsn"),
		Retention: c.GetString("journal.retention"),
		PruneFreq: c.GetString("journal.prune_frequency"),
	}
}

// GetProgress returns the progress configuration
func (c *Config) GetProgress() ProgressConfig {
	return ProgressConfig{
		Type:  c.GetString("progress.type"),
		Width: c.GetInt("progress.width"),
	}
}

// Policy validates the cleanup inputs and builds the retention policy
// for one run. The start-date/older-than exclusivity rule lives here,
// at the boundary; the engine accepts both fields independently.
func (c CleanupConfig) Policy() (*core.RetentionPolicy, error) {
	if c.KeepCategoryRegex == "" {
		return nil, fmt.Errorf("keep category regex must not be empty")
	}
	pattern, err := regexp.Compile("(?i)" + c.KeepCategoryRegex)
	if err != nil {
		return nil, fmt.Errorf("invalid keep category regex %q: %w", c.KeepCategoryRegex, err)
	}
	if c.StartDate != "" && c.OlderThan != "" {
		return nil, fmt.Errorf("start date and older-than cutoff are mutually exclusive")
	}

	policy := &core.RetentionPolicy{
		KeepCategoryPattern: pattern,
		MarkRead:            c.MarkRead,
	}
	if c.StartDate != "" {
		t, err := time.Parse(dateLayout, c.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q (want YYYY-MM-DD): %w", c.StartDate, err)
		}
		policy.RetrievalStartDate = &t
	}
	if c.OlderThan != "" {
		t, err := time.Parse(dateLayout, c.OlderThan)
		if err != nil {
			return nil, fmt.Errorf("invalid older-than cutoff %q (want YYYY-MM-DD): %w", c.OlderThan, err)
		}
		policy.DeleteOlderThan = &t
	}
	return policy, nil
}

// Options returns the run options derived from the cleanup inputs.
func (c CleanupConfig) Options() core.RunOptions {
	return core.RunOptions{
		IncludeRoot: c.IncludeRoot,
		DryRun:      c.DryRun,
	}
}
