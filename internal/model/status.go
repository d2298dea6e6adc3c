package model

// ItemStatus represents the lifecycle status of a content item.
type ItemStatus string

const (
	// StatusPending means the item is queued but not yet assigned to an account
	StatusPending ItemStatus = "pending"

	// StatusAssigned means an account is currently attempting the item
	StatusAssigned ItemStatus = "assigned"

	// StatusRetryPending means a previous attempt failed and the item waits in the retry queue
	StatusRetryPending ItemStatus = "retry_pending"

	// StatusCompleted means the item was downloaded successfully
	StatusCompleted ItemStatus = "completed"

	// StatusFailedPermanent means the item exhausted its retry budget or is itself bad
	StatusFailedPermanent ItemStatus = "failed_permanent"

	// StatusSkippedDuplicate means the item was already retrieved in an earlier run
	StatusSkippedDuplicate ItemStatus = "skipped_duplicate"
)

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the item will receive no further attempts
func (s ItemStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailedPermanent || s == StatusSkippedDuplicate
}

// RunState represents the terminal (or current) state of a scheduler run.
type RunState string

const (
	// RunStateRunning means the run is still in progress
	RunStateRunning RunState = "running"

	// RunStateCompleted means all items reached a terminal status
	RunStateCompleted RunState = "completed"

	// RunStateStopped means the run was stopped cooperatively by the caller
	RunStateStopped RunState = "stopped"

	// RunStateExhausted means every account was disabled while work remained
	RunStateExhausted RunState = "exhausted"
)

// String returns the string representation of RunState
func (s RunState) String() string {
	return string(s)
}

// IsFinished returns true if the run has ended
func (s RunState) IsFinished() bool {
	return s != RunStateRunning
}
