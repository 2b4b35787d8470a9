package vectorstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ragstack/ragd/internal/vectorstore"
	"github.com/ragstack/ragd/test/testutil"
)

func TestPgStoreUpsertAndSearch(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	store := vectorstore.NewPgStore(db)
	collection := "vectest_" + uuid.NewString()[:8]
	ctx := context.Background()

	require.NoError(t, store.EnsureCollection(ctx, collection, 3))
	// Idempotent.
	require.NoError(t, store.EnsureCollection(ctx, collection, 3))

	points := []vectorstore.Point{
		{ID: uuid.NewString(), Vector: []float32{1, 0, 0}, Payload: map[string]interface{}{"text": "east", "chunk_index": 0}},
		{ID: uuid.NewString(), Vector: []float32{0, 1, 0}, Payload: map[string]interface{}{"text": "north", "chunk_index": 1}},
		{ID: uuid.NewString(), Vector: []float32{0.9, 0.1, 0}, Payload: map[string]interface{}{"text": "east-ish", "chunk_index": 2}},
	}
	require.NoError(t, store.Upsert(ctx, collection, points))

	count, err := store.Count(ctx, collection)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	hits, err := store.Search(ctx, collection, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "east", hits[0].Payload["text"])
	require.Equal(t, "east-ish", hits[1].Payload["text"])
	require.Greater(t, hits[0].Score, hits[1].Score)
	require.InDelta(t, 1.0, float64(hits[0].Score), 1e-4)

	// Upsert with an existing id replaces the row.
	updated := points[0]
	updated.Payload = map[string]interface{}{"text": "east updated", "chunk_index": 0}
	require.NoError(t, store.Upsert(ctx, collection, []vectorstore.Point{updated}))
	count, err = store.Count(ctx, collection)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	hits, err = store.Search(ctx, collection, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "east updated", hits[0].Payload["text"])
}

func TestPgStoreRejectsBadCollectionName(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	store := vectorstore.NewPgStore(db)
	ctx := context.Background()
	require.Error(t, store.EnsureCollection(ctx, "Bad Name; drop table", 3))
	_, err := store.Search(ctx, "UPPER", []float32{1}, 1)
	require.Error(t, err)
}
