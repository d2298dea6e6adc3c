package dedupe

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "harvester.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_MarkAndCheck(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seen, err := store.AlreadyRetrieved(ctx, "video1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkRetrieved(ctx, "video1"))

	seen, err = store.AlreadyRetrieved(ctx, "video1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.AlreadyRetrieved(ctx, "video2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestStore_MarkIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkRetrieved(ctx, "video1"))
	require.NoError(t, store.MarkRetrieved(ctx, "video1"))

	seen, err := store.AlreadyRetrieved(ctx, "video1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvester.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.MarkRetrieved(ctx, "video1"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	seen, err := reopened.AlreadyRetrieved(ctx, "video1")
	require.NoError(t, err)
	assert.True(t, seen, "retrieval state must survive restarts")
}

func TestStore_ConcurrentMarks(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.MarkRetrieved(ctx, "contested"))
		}()
	}
	wg.Wait()

	seen, err := store.AlreadyRetrieved(ctx, "contested")
	require.NoError(t, err)
	assert.True(t, seen)
}
