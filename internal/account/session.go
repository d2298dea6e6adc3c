// Package account models one authenticated download identity: a cookie-based
// credential plus mutable health state. Session state is written only by the
// worker that owns the session; the mutex exists so statistics snapshots can
// be taken from other goroutines at any time.
package account

import (
	"sync"
	"time"

	"github.com/ytget/yt-harvester/internal/model"
	"github.com/ytget/yt-harvester/internal/ratelimit"
)

// Session wraps a single credential and its health counters for one run.
type Session struct {
	mu sync.Mutex

	credential          string
	valid               bool
	disabled            bool
	consecutiveFailures int
	totalSuccesses      int
	totalFailures       int
	lastAttempt         time.Time
	failureSequence     []model.ErrorKind

	disableThreshold int
	limiter          *ratelimit.Limiter
}

// NewSession creates a session for a credential handle (a cookie file path).
// The session starts valid; MarkValid records the one-shot validation result
// before scheduling begins.
func NewSession(credential string, disableThreshold int, limiter *ratelimit.Limiter) *Session {
	return &Session{
		credential:       credential,
		valid:            true,
		disableThreshold: disableThreshold,
		limiter:          limiter,
	}
}

// Credential returns the opaque credential handle.
func (s *Session) Credential() string {
	return s.credential
}

// Limiter returns the session's rate limiter. Only the owning worker may call
// its mutating methods.
func (s *Session) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// MarkValid records the startup validation result. A session that fails
// validation is disabled before it receives any work; it stays visible in the
// final statistics.
func (s *Session) MarkValid(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = ok
	if !ok {
		s.disabled = true
	}
}

// Valid reports the startup validation result.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valid
}

// Disabled reports whether the session is excluded from assignment.
func (s *Session) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

// RecordSuccess resets the consecutive-failure counter and bumps totals. A
// disabled session never becomes enabled again; a stale credential does not
// spontaneously recover.
func (s *Session) RecordSuccess(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveFailures = 0
	s.totalSuccesses++
	s.lastAttempt = now
}

// RecordFailure updates health counters for a classified failure and returns
// true if this failure disabled the session. Content-level failures do not
// touch the consecutive counter: the item is bad, not the account. Only
// authentication failures can disable, and disabling is terminal for the run.
func (s *Session) RecordFailure(now time.Time, kind model.ErrorKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalFailures++
	s.lastAttempt = now
	s.failureSequence = append(s.failureSequence, kind)

	if !kind.CountsAgainstAccount() {
		return false
	}

	s.consecutiveFailures++
	if kind.Disabling() && s.consecutiveFailures >= s.disableThreshold && !s.disabled {
		s.disabled = true
		return true
	}
	return false
}

// Report returns a point-in-time snapshot of the session for statistics.
func (s *Session) Report() model.AccountReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := make([]model.ErrorKind, len(s.failureSequence))
	copy(seq, s.failureSequence)

	return model.AccountReport{
		Credential:          s.credential,
		Valid:               s.valid,
		Disabled:            s.disabled,
		TotalSuccesses:      s.totalSuccesses,
		TotalFailures:       s.totalFailures,
		ConsecutiveFailures: s.consecutiveFailures,
		FailureSequence:     seq,
		LastAttemptAt:       s.lastAttempt,
	}
}
