package model

import "time"

// ReportSchemaVersion identifies the run report format.
const ReportSchemaVersion = 1

// RunTotals holds the aggregate counters for a run.
type RunTotals struct {
	Submitted        int `json:"submitted"`
	Completed        int `json:"completed"`
	FailedPermanent  int `json:"failed_permanent"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	Remaining        int `json:"remaining"`
}

// AccountReport is the per-account slice of the final report.
type AccountReport struct {
	Credential          string      `json:"credential"`
	Valid               bool        `json:"valid"`
	Disabled            bool        `json:"disabled"`
	TotalSuccesses      int         `json:"total_successes"`
	TotalFailures       int         `json:"total_failures"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	FailureSequence     []ErrorKind `json:"failure_sequence,omitempty"`
	LastAttemptAt       time.Time   `json:"last_attempt_at,omitempty"`
}

// FailedItem describes one permanently failed item with enough context for an
// operator to decide whether to replay it with fresh credentials.
type FailedItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Attempts  int       `json:"attempts"`
	ErrorKind ErrorKind `json:"error_kind"`
	LastError string    `json:"last_error,omitempty"`
}

// RunReport is the canonical end-of-run state. It is written to disk as JSON
// and doubles as the manifest for replaying the failed subset of a run.
type RunReport struct {
	SchemaVersion int             `json:"schema_version"`
	RunID         string          `json:"run_id"`
	State         RunState        `json:"state"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at,omitempty"`
	Totals        RunTotals       `json:"totals"`
	Accounts      []AccountReport `json:"accounts"`
	FailedItems   []FailedItem    `json:"failed_items,omitempty"`
	RemainingIDs  []string        `json:"remaining_ids,omitempty"`
}
