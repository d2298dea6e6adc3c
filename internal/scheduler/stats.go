package scheduler

import (
	"sync"

	"github.com/ytget/yt-harvester/internal/model"
)

// Stats is a point-in-time view of a run, pollable at any time during or
// after it.
type Stats struct {
	RunID            string
	State            model.RunState
	Submitted        int
	Completed        int
	FailedPermanent  int
	SkippedDuplicate int
	Queued           int
	InFlight         int
	Accounts         []model.AccountReport
}

// runStats accumulates the item-level counters. Account counters live on the
// sessions themselves.
type runStats struct {
	mu               sync.Mutex
	submitted        int
	completed        int
	failedPermanent  int
	skippedDuplicate int
	failedItems      []model.FailedItem
}

func (r *runStats) setSubmitted(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = n
}

func (r *runStats) addCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func (r *runStats) addSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skippedDuplicate++
}

func (r *runStats) addFailedPermanent(item *model.ContentItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedPermanent++
	r.failedItems = append(r.failedItems, model.FailedItem{
		ID:        item.ID,
		URL:       item.URL,
		Attempts:  item.Attempts,
		ErrorKind: item.ErrorKind,
		LastError: item.LastError,
	})
}

func (r *runStats) snapshot() (submitted, completed, failed, skipped int, failedItems []model.FailedItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]model.FailedItem, len(r.failedItems))
	copy(items, r.failedItems)
	return r.submitted, r.completed, r.failedPermanent, r.skippedDuplicate, items
}
