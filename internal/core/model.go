package core

import (
	"regexp"
	"sort"
	"time"
)

// Folder identifies a single mail folder on the store.
type Folder struct {
	ID   string
	Name string
}

// MessageRecord is the normalized metadata for one retrieved message.
// ID is the store-assigned identifier and is unique within a single
// retrieval pass; ConversationID may repeat across many records.
type MessageRecord struct {
	ID             string
	ConversationID string
	CreationTime   time.Time
	Categories     string
	Subject        string
	Folder         string
}

// ItemProjection is the lightweight (id, timestamp) tuple returned by
// the bulk projection pass of the two-phase retrieval strategy.
type ItemProjection struct {
	ID           string
	CreationTime time.Time
}

// RetentionPolicy is the immutable configuration for one cleanup run.
// RetrievalStartDate and DeleteOlderThan are independently settable;
// whether they may be combined is decided at the configuration
// boundary, not here.
type RetentionPolicy struct {
	KeepCategoryPattern *regexp.Regexp
	RetrievalStartDate  *time.Time
	DeleteOlderThan     *time.Time
	MarkRead            bool
}

// IsExempt reports whether a category label set matches the keep
// pattern. A message matching the pattern is never deleted.
func (p *RetentionPolicy) IsExempt(categories string) bool {
	if p == nil || p.KeepCategoryPattern == nil || categories == "" {
		return false
	}
	return p.KeepCategoryPattern.MatchString(categories)
}

// DeletionSet is the set of message ids marked for deletion.
type DeletionSet map[string]struct{}

// IDs returns the members of the set in sorted order. Execution order
// carries no semantics; sorting keeps runs reproducible.
func (s DeletionSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeletionResult aggregates the outcome of one executor pass.
// Succeeded <= Attempted always holds; Skipped covers every attempt
// that was neither counted as a success nor aborted the run.
type DeletionResult struct {
	Attempted int
	Succeeded int
	Skipped   int
	NotFound  int
	Exempt    int
	Errors    int
}

// Outcome classifies a single deletion attempt for the run journal.
type Outcome string

const (
	OutcomeDeleted  Outcome = "deleted"
	OutcomeNotFound Outcome = "not_found"
	OutcomeExempt   Outcome = "exempt"
	OutcomeError    Outcome = "error"
)

// RunSummary describes one complete cleanup run.
type RunSummary struct {
	RunID         string
	Folders       int
	Retrieved     int
	Conversations int
	Planned       int
	Result        DeletionResult
	DryRun        bool
	StartedAt     time.Time
	Duration      time.Duration
}
