package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	moves := []Move{
		{RunID: "run-1", FileName: "a.jpg", Source: "in/a.jpg", Destination: "sorted/cats/a.jpg", Folder: "cats", Reply: "a.jpg:cats"},
		{RunID: "run-1", FileName: "b.png", Source: "in/b.png", Destination: "sorted/dogs/b.png", Folder: "dogs", Reply: "b.png:dogs"},
		{RunID: "run-2", FileName: "c.gif", Source: "in/c.gif", Destination: "sorted/memes/c.gif", Folder: "memes", Reply: "memes"},
	}
	for _, m := range moves {
		require.NoError(t, store.Record(ctx, m))
	}

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	// Newest first.
	assert.Equal(t, "c.gif", recent[0].FileName)
	assert.Equal(t, "b.png", recent[1].FileName)
	assert.Equal(t, "a.jpg", recent[2].FileName)
	assert.Equal(t, "run-2", recent[0].RunID)
	assert.False(t, recent[0].MovedAt.IsZero(), "Record must stamp MovedAt when unset")
}

func TestRecent_Limit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, Move{
			RunID: "run", FileName: "x.jpg", Source: "in/x.jpg",
			Destination: "sorted/misc/x.jpg", Folder: "misc", Reply: "misc",
			MovedAt: time.Now().UTC(),
		}))
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	// Non-positive limit falls back to the default instead of returning nothing.
	recent, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
