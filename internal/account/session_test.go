package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-harvester/internal/model"
	"github.com/ytget/yt-harvester/internal/ratelimit"
)

func newTestSession(t *testing.T, threshold int) *Session {
	t.Helper()
	limiter, err := ratelimit.New(time.Second, 2*time.Second)
	require.NoError(t, err)
	return NewSession("cookies/a.txt", threshold, limiter)
}

func TestSession_DisabledAfterConsecutiveAuthFailures(t *testing.T) {
	s := newTestSession(t, 3)
	now := time.Now()

	assert.False(t, s.RecordFailure(now, model.ErrorKindAuth))
	assert.False(t, s.RecordFailure(now, model.ErrorKindAuth))
	assert.False(t, s.Disabled())

	disabled := s.RecordFailure(now, model.ErrorKindAuth)
	assert.True(t, disabled, "third consecutive auth failure must disable")
	assert.True(t, s.Disabled())

	report := s.Report()
	assert.Equal(t, 3, report.TotalFailures)
	assert.Equal(t, 3, report.ConsecutiveFailures)
	assert.Equal(t, []model.ErrorKind{model.ErrorKindAuth, model.ErrorKindAuth, model.ErrorKindAuth}, report.FailureSequence)
}

func TestSession_TransientFailuresNeverDisable(t *testing.T) {
	s := newTestSession(t, 3)
	now := time.Now()

	for i := 0; i < 10; i++ {
		assert.False(t, s.RecordFailure(now, model.ErrorKindTransient))
	}
	assert.False(t, s.Disabled())
	assert.Equal(t, 10, s.Report().ConsecutiveFailures)
}

func TestSession_RateLimitedCountsButNeverDisables(t *testing.T) {
	s := newTestSession(t, 2)
	now := time.Now()

	for i := 0; i < 5; i++ {
		assert.False(t, s.RecordFailure(now, model.ErrorKindRateLimited))
	}
	assert.False(t, s.Disabled())
}

func TestSession_ContentUnavailableDoesNotCount(t *testing.T) {
	s := newTestSession(t, 3)
	now := time.Now()

	s.RecordFailure(now, model.ErrorKindContentUnavailable)
	report := s.Report()

	assert.Equal(t, 0, report.ConsecutiveFailures, "bad content is not the account's fault")
	assert.Equal(t, 1, report.TotalFailures, "still counted for observability")
	assert.False(t, s.Disabled())
}

func TestSession_SuccessResetsConsecutiveFailures(t *testing.T) {
	s := newTestSession(t, 3)
	now := time.Now()

	s.RecordFailure(now, model.ErrorKindAuth)
	s.RecordFailure(now, model.ErrorKindAuth)
	s.RecordSuccess(now)
	s.RecordFailure(now, model.ErrorKindAuth)
	s.RecordFailure(now, model.ErrorKindAuth)

	assert.False(t, s.Disabled(), "success must reset the consecutive counter")

	report := s.Report()
	assert.Equal(t, 1, report.TotalSuccesses)
	assert.Equal(t, 2, report.ConsecutiveFailures)
}

func TestSession_DisablingIsTerminal(t *testing.T) {
	s := newTestSession(t, 1)
	now := time.Now()

	require.True(t, s.RecordFailure(now, model.ErrorKindAuth))
	require.True(t, s.Disabled())

	s.RecordSuccess(now)
	assert.True(t, s.Disabled(), "success never re-enables a disabled session")
}

func TestSession_FailedValidationDisables(t *testing.T) {
	s := newTestSession(t, 3)

	s.MarkValid(false)
	assert.False(t, s.Valid())
	assert.True(t, s.Disabled())

	report := s.Report()
	assert.False(t, report.Valid)
	assert.True(t, report.Disabled)
}
