package queue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-harvester/internal/model"
)

func item(id string) *model.ContentItem {
	return model.NewContentItem(fmt.Sprintf("https://www.youtube.com/watch?v=%s", id))
}

func TestWorkQueue_FIFOOrder(t *testing.T) {
	q := New(2)
	for _, id := range []string{"a", "b", "c"} {
		q.Enqueue(item(id))
	}

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Next()
		require.True(t, ok)
		assert.Equal(t, want, got.ID)
		assert.Equal(t, model.StatusAssigned, got.Status)
		q.Finish(got)
	}

	_, ok := q.Next()
	assert.False(t, ok)
	assert.True(t, q.Idle())
}

func TestWorkQueue_RetriesDrainAfterPrimary(t *testing.T) {
	q := New(2)
	q.Enqueue(item("a"))
	q.Enqueue(item("b"))

	a, ok := q.Next()
	require.True(t, ok)
	a.Attempts = 1
	require.True(t, q.Retry(a), "first retry must be accepted")

	// Primary still holds b: it must come out before the retried a.
	b, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "b", b.ID)
	q.Finish(b)

	next, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "a", next.ID)
	q.Finish(next)
}

func TestWorkQueue_RetryBudget(t *testing.T) {
	// 2 retries = 3 total attempts.
	q := New(2)
	q.Enqueue(item("a"))

	for attempt := 1; attempt <= 3; attempt++ {
		it, ok := q.Next()
		require.True(t, ok, "attempt %d", attempt)
		it.Attempts = attempt
		accepted := q.Retry(it)
		if attempt < 3 {
			assert.True(t, accepted, "attempt %d should leave retry budget", attempt)
		} else {
			assert.False(t, accepted, "attempt 3 exhausts the budget")
			q.Finish(it)
		}
	}

	_, ok := q.Next()
	assert.False(t, ok, "exhausted item must never be re-enqueued")
	assert.True(t, q.Idle())
}

func TestWorkQueue_ZeroRetries(t *testing.T) {
	q := New(0)
	q.Enqueue(item("a"))

	it, ok := q.Next()
	require.True(t, ok)
	it.Attempts = 1
	assert.False(t, q.Retry(it), "zero retry budget rejects the first retry")
}

func TestWorkQueue_IdleTracksInFlight(t *testing.T) {
	q := New(2)
	q.Enqueue(item("a"))

	it, ok := q.Next()
	require.True(t, ok)
	assert.False(t, q.Idle(), "in-flight item keeps the queue busy")
	assert.Equal(t, 1, q.InFlight())
	assert.Equal(t, 0, q.QueuedCount())

	q.Finish(it)
	assert.True(t, q.Idle())
}

func TestWorkQueue_Drain(t *testing.T) {
	q := New(2)
	q.Enqueue(item("a"))
	q.Enqueue(item("b"))

	it, ok := q.Next()
	require.True(t, ok)
	it.Attempts = 1
	require.True(t, q.Retry(it))

	remaining := q.Drain()
	assert.Len(t, remaining, 2)
	assert.Equal(t, 0, q.QueuedCount())

	_, ok = q.Next()
	assert.False(t, ok)
}

func TestWorkQueue_ConcurrentDequeue(t *testing.T) {
	q := New(2)
	const n = 200
	for i := 0; i < n; i++ {
		q.Enqueue(item(fmt.Sprintf("v%03d", i)))
	}

	seen := make(chan string, n)
	done := make(chan struct{})
	for w := 0; w < 4; w++ {
		go func() {
			for {
				it, ok := q.Next()
				if !ok {
					done <- struct{}{}
					return
				}
				seen <- it.ID
				q.Finish(it)
			}
		}()
	}
	for w := 0; w < 4; w++ {
		<-done
	}
	close(seen)

	unique := make(map[string]bool)
	for id := range seen {
		require.False(t, unique[id], "item %s dequeued twice", id)
		unique[id] = true
	}
	assert.Len(t, unique, n)
}
