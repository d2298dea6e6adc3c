package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ytget/yt-harvester/internal/account"
	"github.com/ytget/yt-harvester/internal/config"
	"github.com/ytget/yt-harvester/internal/model"
	"github.com/ytget/yt-harvester/internal/queue"
	"github.com/ytget/yt-harvester/internal/quiet"
	"github.com/ytget/yt-harvester/internal/ratelimit"
)

// defaultPollInterval bounds how long an idle worker sleeps before
// re-checking its gates, so stop requests and freed-up work are noticed
// promptly.
const defaultPollInterval = 5 * time.Second

// Scheduler coordinates parallel downloads across a pool of account sessions.
type Scheduler struct {
	cfg    *config.Config
	runID  string
	logger *zap.Logger

	exec      Executor
	gate      DeduplicationGate
	validator CredentialValidator
	clock     Clock

	quietPolicy  *quiet.Policy
	sessions     []*account.Session
	queue        *queue.WorkQueue
	pollInterval time.Duration
	onUpdate     func(*model.ContentItem)

	stats  runStats
	stopCh chan struct{}
	done   chan struct{}

	stopOnce sync.Once
	wg       sync.WaitGroup

	mu            sync.Mutex
	started       bool
	stopRequested bool
	state         model.RunState
	startedAt     time.Time
	finishedAt    time.Time
	remaining     []*model.ContentItem
}

// Option customizes scheduler creation.
type Option func(*Scheduler)

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithPollInterval overrides the idle-poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.pollInterval = d
	}
}

// WithUpdateCallback registers a callback invoked after every item state
// change. The callback must not block; it runs on the worker goroutines.
func WithUpdateCallback(fn func(*model.ContentItem)) Option {
	return func(s *Scheduler) {
		s.onUpdate = fn
	}
}

// New creates a scheduler from a validated configuration and its
// collaborators. One session with its own rate limiter is created per cookie
// file; a single-account run is just a pool of size one.
func New(cfg *config.Config, exec Executor, gate DeduplicationGate, validator CredentialValidator, logger *zap.Logger, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if exec == nil || gate == nil || validator == nil {
		return nil, fmt.Errorf("%w: executor, gate and validator are required", config.ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", config.ErrInvalidConfiguration, cfg.Timezone)
	}
	policy, err := quiet.NewPolicy(cfg.QuietHoursEnabled, cfg.QuietStartHour, cfg.QuietEndHour, loc)
	if err != nil {
		return nil, err
	}

	sessions := make([]*account.Session, 0, len(cfg.CookieFiles))
	for _, cookieFile := range cfg.CookieFiles {
		limiter, err := ratelimit.New(cfg.MinDelay(), cfg.MaxDelay())
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, account.NewSession(cookieFile, cfg.DisableThreshold, limiter))
	}

	s := &Scheduler{
		cfg:          cfg,
		runID:        uuid.NewString(),
		logger:       logger,
		exec:         exec,
		gate:         gate,
		validator:    validator,
		clock:        systemClock{},
		quietPolicy:  policy,
		sessions:     sessions,
		queue:        queue.New(cfg.MaxRetryAttempts),
		pollInterval: defaultPollInterval,
		state:        model.RunStateRunning,
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RunID returns the unique identifier of this run.
func (s *Scheduler) RunID() string {
	return s.runID
}

// Start validates every credential, enqueues the unique submitted URLs, and
// launches one worker per usable session. It returns only construction-level
// errors; per-item and per-account failures surface through statistics and
// the final report.
func (s *Scheduler) Start(ctx context.Context, urls []string) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("scheduler already started")
	}
	s.started = true
	s.startedAt = s.clock.Now()
	s.mu.Unlock()

	// Deduplicate the submitted list itself, preserving order.
	seen := make(map[string]bool)
	unique := 0
	for _, url := range urls {
		item := model.NewContentItem(url)
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		unique++
		s.queue.Enqueue(item)
	}
	s.stats.setSubmitted(unique)

	s.logger.Info("run starting",
		zap.String("run_id", s.runID),
		zap.Int("items", unique),
		zap.Int("accounts", len(s.sessions)),
	)

	workers := 0
	for _, sess := range s.sessions {
		ok := s.validator.Validate(ctx, sess.Credential())
		sess.MarkValid(ok)
		if !ok {
			s.logger.Warn("credential failed validation, account excluded",
				zap.String("account", sess.Credential()),
			)
			continue
		}
		workers++
		s.wg.Add(1)
		go s.worker(ctx, sess)
	}

	if workers == 0 {
		s.logger.Error("no usable accounts after validation")
	}

	go s.awaitCompletion(ctx)
	return nil
}

// Stop requests a cooperative stop: no new assignments are made, in-flight
// attempts finish per the executor's own contract.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopRequested = true
		s.mu.Unlock()
		close(s.stopCh)
		s.logger.Info("stop requested", zap.String("run_id", s.runID))
	})
}

// Wait blocks until the run ends and returns its terminal state.
func (s *Scheduler) Wait() model.RunState {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done returns a channel closed when the run ends.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Stats returns a snapshot of the run, safe to call concurrently with an
// active run.
func (s *Scheduler) Stats() Stats {
	submitted, completed, failed, skipped, _ := s.stats.snapshot()

	accounts := make([]model.AccountReport, 0, len(s.sessions))
	for _, sess := range s.sessions {
		accounts = append(accounts, sess.Report())
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	return Stats{
		RunID:            s.runID,
		State:            state,
		Submitted:        submitted,
		Completed:        completed,
		FailedPermanent:  failed,
		SkippedDuplicate: skipped,
		Queued:           s.queue.QueuedCount(),
		InFlight:         s.queue.InFlight(),
		Accounts:         accounts,
	}
}

// Report builds the full run report, including every permanently failed item
// and the identifiers left unprocessed by a stopped or exhausted run.
func (s *Scheduler) Report() *model.RunReport {
	submitted, completed, failed, skipped, failedItems := s.stats.snapshot()

	accounts := make([]model.AccountReport, 0, len(s.sessions))
	for _, sess := range s.sessions {
		accounts = append(accounts, sess.Report())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remainingIDs := make([]string, 0, len(s.remaining))
	for _, item := range s.remaining {
		remainingIDs = append(remainingIDs, item.ID)
	}

	return &model.RunReport{
		SchemaVersion: model.ReportSchemaVersion,
		RunID:         s.runID,
		State:         s.state,
		StartedAt:     s.startedAt,
		FinishedAt:    s.finishedAt,
		Totals: model.RunTotals{
			Submitted:        submitted,
			Completed:        completed,
			FailedPermanent:  failed,
			SkippedDuplicate: skipped,
			Remaining:        len(remainingIDs),
		},
		Accounts:     accounts,
		FailedItems:  failedItems,
		RemainingIDs: remainingIDs,
	}
}

// worker runs one account session: strictly sequential attempts, gated by
// quiet hours first, then the session's own rate limiter.
func (s *Scheduler) worker(ctx context.Context, sess *account.Session) {
	defer s.wg.Done()
	log := s.logger.With(zap.String("account", sess.Credential()))

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		if s.queue.Idle() {
			return
		}
		if sess.Disabled() {
			log.Warn("account disabled, worker exiting")
			return
		}

		now := s.clock.Now()
		if s.quietPolicy.IsQuiet(now) {
			if !s.pause(ctx, s.pollInterval) {
				return
			}
			continue
		}

		if !sess.Limiter().Eligible(now) {
			wait := sess.Limiter().NextEligible().Sub(now)
			if wait > s.pollInterval {
				wait = s.pollInterval
			}
			if !s.pause(ctx, wait) {
				return
			}
			continue
		}

		item, ok := s.queue.Next()
		if !ok {
			// Queue drained but attempts are still in flight; one may yet be
			// requeued for retry.
			if !s.pause(ctx, s.pollInterval) {
				return
			}
			continue
		}

		s.process(ctx, sess, item, log)
	}
}

// process runs one attempt for one item on one session.
func (s *Scheduler) process(ctx context.Context, sess *account.Session, item *model.ContentItem, log *zap.Logger) {
	already, err := s.gate.AlreadyRetrieved(ctx, item.ID)
	if err != nil {
		// A broken gate must not halt the run; treat the item as new.
		log.Warn("deduplication check failed", zap.String("item", item.ID), zap.Error(err))
	}
	if already {
		item.Status = model.StatusSkippedDuplicate
		item.FinishedAt = s.clock.Now()
		s.stats.addSkipped()
		s.queue.Finish(item)
		log.Debug("skipped duplicate", zap.String("item", item.ID))
		s.notify(item)
		return
	}

	now := s.clock.Now()
	item.Attempts++
	if item.FirstAttemptAt.IsZero() {
		item.FirstAttemptAt = now
	}

	res := s.exec.Attempt(ctx, Request{
		ContentID:  item.ID,
		URL:        item.URL,
		Credential: sess.Credential(),
	})
	now = s.clock.Now()

	// The delay applies whether the attempt succeeded or failed; retrying
	// faster after a failure is itself a bot signature.
	sess.Limiter().RecordAttempt(now)

	if res.Success {
		sess.RecordSuccess(now)
		item.Status = model.StatusCompleted
		item.ArtifactPath = res.ArtifactPath
		item.FinishedAt = now
		if err := s.gate.MarkRetrieved(ctx, item.ID); err != nil {
			log.Warn("failed to record retrieval", zap.String("item", item.ID), zap.Error(err))
		}
		s.stats.addCompleted()
		s.queue.Finish(item)
		log.Info("item completed", zap.String("item", item.ID), zap.Int("attempts", item.Attempts))
		s.notify(item)
		return
	}

	kind := res.Kind
	if kind == model.ErrorKindNone {
		kind = model.ErrorKindUnknown
	}
	item.LastError = res.Message
	item.ErrorKind = kind

	disabled := sess.RecordFailure(now, kind)
	if kind == model.ErrorKindRateLimited {
		sess.Limiter().Cooldown(now)
	}
	if kind == model.ErrorKindUnknown {
		log.Warn("unclassified failure, retrying as transient",
			zap.String("item", item.ID),
			zap.String("error", res.Message),
		)
	}

	switch {
	case !kind.Retryable():
		s.failPermanently(item, log)
	case !s.queue.Retry(item):
		s.failPermanently(item, log)
	default:
		log.Info("item requeued for retry",
			zap.String("item", item.ID),
			zap.Int("attempts", item.Attempts),
			zap.String("kind", kind.String()),
		)
	}

	if disabled {
		log.Warn("account disabled after repeated auth failures",
			zap.Int("threshold", s.cfg.DisableThreshold),
		)
	}
	s.notify(item)
}

// failPermanently records an item's terminal failure and releases it.
func (s *Scheduler) failPermanently(item *model.ContentItem, log *zap.Logger) {
	item.Status = model.StatusFailedPermanent
	item.FinishedAt = s.clock.Now()
	s.stats.addFailedPermanent(item)
	s.queue.Finish(item)
	log.Warn("item failed permanently",
		zap.String("item", item.ID),
		zap.Int("attempts", item.Attempts),
		zap.String("kind", item.ErrorKind.String()),
	)
}

// pause sleeps for d on the injected clock, returning false if the run was
// stopped or cancelled in the meantime.
func (s *Scheduler) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-s.stopCh:
		return false
	case <-s.clock.After(d):
		return true
	}
}

// awaitCompletion waits for every worker to exit, then records the terminal
// state. Workers exit on stop, on cancellation, when their account is
// disabled, or when no work remains.
func (s *Scheduler) awaitCompletion(ctx context.Context) {
	s.wg.Wait()

	s.mu.Lock()
	switch {
	case s.stopRequested || ctx.Err() != nil:
		s.state = model.RunStateStopped
	case s.queue.Idle():
		s.state = model.RunStateCompleted
	default:
		// Work remains but every worker is gone: all accounts disabled.
		s.state = model.RunStateExhausted
	}
	s.remaining = s.queue.Drain()
	s.finishedAt = s.clock.Now()
	state := s.state
	s.mu.Unlock()

	submitted, completed, failed, skipped, _ := s.stats.snapshot()
	s.logger.Info("run finished",
		zap.String("run_id", s.runID),
		zap.String("state", state.String()),
		zap.Int("submitted", submitted),
		zap.Int("completed", completed),
		zap.Int("failed_permanent", failed),
		zap.Int("skipped_duplicate", skipped),
		zap.Int("remaining", len(s.remaining)),
	)

	close(s.done)
}

// notify calls the update callback if set.
func (s *Scheduler) notify(item *model.ContentItem) {
	if s.onUpdate != nil {
		s.onUpdate(item)
	}
}
