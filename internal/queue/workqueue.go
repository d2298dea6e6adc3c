// Package queue implements the shared work backlog: a FIFO primary queue plus
// a retry queue drained only once the primary is empty, so first-pass
// progress is never starved by retries. The queue is the failover mechanism:
// retried items are not pinned to an account, any healthy worker pulls them.
package queue

import (
	"sync"

	"github.com/ytget/yt-harvester/internal/model"
)

// WorkQueue is safe for concurrent use by all account workers.
type WorkQueue struct {
	mu       sync.Mutex
	primary  []*model.ContentItem
	retry    []*model.ContentItem
	inFlight int

	maxRetryAttempts int
}

// New creates a work queue. maxRetryAttempts is the number of retries after
// the initial attempt (2 retries = 3 total attempts).
func New(maxRetryAttempts int) *WorkQueue {
	return &WorkQueue{maxRetryAttempts: maxRetryAttempts}
}

// Enqueue appends an item to the back of the primary queue.
func (q *WorkQueue) Enqueue(item *model.ContentItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item.Status = model.StatusPending
	q.primary = append(q.primary, item)
}

// Next atomically pops the next item: primary queue first, then retries.
// The item counts as in flight until Finish or Retry is called for it.
func (q *WorkQueue) Next() (*model.ContentItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var item *model.ContentItem
	switch {
	case len(q.primary) > 0:
		item = q.primary[0]
		q.primary = q.primary[1:]
	case len(q.retry) > 0:
		item = q.retry[0]
		q.retry = q.retry[1:]
	default:
		return nil, false
	}

	item.Status = model.StatusAssigned
	q.inFlight++
	return item, true
}

// Finish releases an in-flight item whose terminal status the caller has
// already recorded.
func (q *WorkQueue) Finish(item *model.ContentItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.inFlight--
}

// Retry re-enqueues a retryably failed in-flight item at the back of the
// retry queue. Returns false when the item's retry budget is exhausted; the
// item then stays in flight and the caller marks it permanently failed and
// releases it with Finish.
func (q *WorkQueue) Retry(item *model.ContentItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if item.Attempts >= q.maxRetryAttempts+1 {
		return false
	}

	item.Status = model.StatusRetryPending
	q.retry = append(q.retry, item)
	q.inFlight--
	return true
}

// QueuedCount returns the number of items waiting in both queues.
func (q *WorkQueue) QueuedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.primary) + len(q.retry)
}

// InFlight returns the number of items currently assigned to a worker.
func (q *WorkQueue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// Idle reports whether no work remains: both queues empty and nothing in
// flight. Workers exit when the queue is idle.
func (q *WorkQueue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.primary) == 0 && len(q.retry) == 0 && q.inFlight == 0
}

// Drain removes and returns every queued item. Used when a run ends with work
// remaining (exhausted or stopped) so the report can enumerate it.
func (q *WorkQueue) Drain() []*model.ContentItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	remaining := make([]*model.ContentItem, 0, len(q.primary)+len(q.retry))
	remaining = append(remaining, q.primary...)
	remaining = append(remaining, q.retry...)
	q.primary = nil
	q.retry = nil
	return remaining
}
