// Package quiet implements the global quiet-hours window shared by all
// accounts: a daily local-time window during which no account starts new
// work, mimicking human usage patterns.
package quiet

import (
	"fmt"
	"time"

	"github.com/ytget/yt-harvester/internal/config"
)

// Policy is the global time-window predicate. Immutable after construction,
// so it is safe to call from every account worker concurrently.
type Policy struct {
	enabled   bool
	startHour int
	endHour   int
	loc       *time.Location
}

// NewPolicy creates a quiet-hours policy. Hours are local hours of day in
// [0,23]; a window where start > end wraps past midnight (22..6 covers
// 22:00-06:00). start == end is a zero-width window, never quiet.
func NewPolicy(enabled bool, startHour, endHour int, loc *time.Location) (*Policy, error) {
	if startHour < 0 || startHour > 23 {
		return nil, fmt.Errorf("%w: quiet start hour must be in [0,23], got %d", config.ErrInvalidConfiguration, startHour)
	}
	if endHour < 0 || endHour > 23 {
		return nil, fmt.Errorf("%w: quiet end hour must be in [0,23], got %d", config.ErrInvalidConfiguration, endHour)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Policy{
		enabled:   enabled,
		startHour: startHour,
		endHour:   endHour,
		loc:       loc,
	}, nil
}

// IsQuiet reports whether now falls inside the quiet window. A disabled
// policy is never quiet.
func (p *Policy) IsQuiet(now time.Time) bool {
	if !p.enabled || p.startHour == p.endHour {
		return false
	}

	hour := now.In(p.loc).Hour()
	if p.startHour < p.endHour {
		return hour >= p.startHour && hour < p.endHour
	}
	// Window wraps past midnight.
	return hour >= p.startHour || hour < p.endHour
}
