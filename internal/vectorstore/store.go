// Package vectorstore is the collection-scoped nearest-neighbor index the
// ingestion and query pipelines write to and read from.
package vectorstore

import "context"

// Point is one stored record: a vector plus an opaque payload, addressed by id.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]interface{}
}

// ScoredPoint is a search match. Score is cosine similarity, higher = closer.
type ScoredPoint struct {
	Score   float32
	Payload map[string]interface{}
}

type Store interface {
	// EnsureCollection creates the named collection with the given vector
	// dimensionality if it does not exist yet. Idempotent.
	EnsureCollection(ctx context.Context, collection string, dim int) error

	// Upsert inserts or replaces points by id in one batch.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to limit nearest points to vector, best first.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error)

	// Count reports how many points the collection holds.
	Count(ctx context.Context, collection string) (int64, error)
}
