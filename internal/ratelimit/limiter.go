// Package ratelimit implements the per-account randomized-delay gate. Every
// attempt draws a fresh delay from [min, max]; a fixed interval between
// requests is a detectable bot signature, so the jitter is the point, not an
// optimization.
package ratelimit

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ytget/yt-harvester/internal/config"
)

// CooldownFactor multiplies the max delay when the provider signals backoff.
const CooldownFactor = 2

// Limiter gates one account's attempts. It is a pure next-eligible-timestamp
// machine over a supplied clock reading: it never sleeps and never reads the
// wall clock itself. Each limiter is owned by a single account worker, so no
// locking is needed.
type Limiter struct {
	minDelay     time.Duration
	maxDelay     time.Duration
	nextEligible time.Time
	randFloat    func() float64
}

// New creates a limiter for the given delay bounds. The bounds are validated
// here so a bad configuration fails at construction, not mid-run.
func New(minDelay, maxDelay time.Duration) (*Limiter, error) {
	if minDelay <= 0 {
		return nil, fmt.Errorf("%w: min delay must be positive, got %s", config.ErrInvalidConfiguration, minDelay)
	}
	if minDelay > maxDelay {
		return nil, fmt.Errorf("%w: min delay %s greater than max delay %s",
			config.ErrInvalidConfiguration, minDelay, maxDelay)
	}
	return &Limiter{
		minDelay:  minDelay,
		maxDelay:  maxDelay,
		randFloat: rand.Float64,
	}, nil
}

// Eligible reports whether the account may start a new attempt at now.
func (l *Limiter) Eligible(now time.Time) bool {
	return !now.Before(l.nextEligible)
}

// NextEligible returns the earliest time the next attempt may start.
func (l *Limiter) NextEligible() time.Time {
	return l.nextEligible
}

// RecordAttempt recomputes the next eligible time as now plus a fresh random
// delay drawn uniformly from [min, max]. Called after every attempt, success
// or failure; retrying faster after a failure is itself a bot signature.
func (l *Limiter) RecordAttempt(now time.Time) time.Time {
	span := l.maxDelay - l.minDelay
	delay := l.minDelay + time.Duration(l.randFloat()*float64(span))
	l.nextEligible = now.Add(delay)
	return l.nextEligible
}

// Cooldown pushes the next eligible time to now plus CooldownFactor times the
// max delay. Applied on top of RecordAttempt when the provider rate-limits the
// account, for that one cycle only.
func (l *Limiter) Cooldown(now time.Time) time.Time {
	next := now.Add(CooldownFactor * l.maxDelay)
	if next.After(l.nextEligible) {
		l.nextEligible = next
	}
	return l.nextEligible
}
