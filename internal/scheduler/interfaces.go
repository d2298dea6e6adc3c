package scheduler

import (
	"context"
	"time"

	"github.com/ytget/yt-harvester/internal/model"
)

// Request identifies one download attempt: what to fetch and with which
// credential.
type Request struct {
	ContentID  string
	URL        string
	Credential string
}

// Result reports the outcome of one attempt. Ordinary failures come back in
// the Result, never as an error; only programmer errors may propagate.
type Result struct {
	Success      bool
	Kind         model.ErrorKind
	Message      string
	ArtifactPath string
}

// Executor performs the actual network retrieval. It must be safe to call
// concurrently for different credentials; the scheduler guarantees attempts
// on the same credential are strictly sequential.
type Executor interface {
	Attempt(ctx context.Context, req Request) Result
}

// DeduplicationGate reports and records which content has already been
// retrieved successfully. Implementations must be idempotent and safe under
// concurrent calls.
type DeduplicationGate interface {
	AlreadyRetrieved(ctx context.Context, contentID string) (bool, error)
	MarkRetrieved(ctx context.Context, contentID string) error
}

// CredentialValidator performs the one-shot credential check before
// scheduling begins.
type CredentialValidator interface {
	Validate(ctx context.Context, credential string) bool
}

// Clock abstracts time so runs can be driven by a simulated clock in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
