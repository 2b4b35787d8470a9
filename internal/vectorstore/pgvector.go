package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/pgvector/pgvector-go"
)

// Collection names become part of table identifiers, so they are restricted
// to a safe charset. Config validation enforces the same rule at startup.
var collectionNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

type PgStore struct {
	db *sql.DB
}

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: db}
}

func tableName(collection string) (string, error) {
	if !collectionNameRe.MatchString(collection) {
		return "", fmt.Errorf("invalid collection name: %q", collection)
	}
	return "vec_" + collection, nil
}

func (s *PgStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	table, err := tableName(collection)
	if err != nil {
		return err
	}
	if dim <= 0 {
		return fmt.Errorf("invalid vector dimension: %d", dim)
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}'::jsonb
		)
	`, table, dim)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	idx := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`,
		table, table,
	)
	if _, err := s.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create index for %s: %w", collection, err)
	}
	return nil
}

func (s *PgStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	table, err := tableName(collection)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, embedding, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			payload = EXCLUDED.payload
	`, table)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range points {
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("encode payload for %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, pgvector.NewVector(p.Vector), payload); err != nil {
			return fmt.Errorf("upsert point %s into %s: %w", p.ID, collection, err)
		}
	}
	return tx.Commit()
}

func (s *PgStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}
	// <=> is cosine distance; similarity = 1 - distance.
	query := fmt.Sprintf(`
		SELECT payload, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, table)
	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	defer rows.Close()

	var results []ScoredPoint
	for rows.Next() {
		var blob []byte
		var score float64
		if err := rows.Scan(&blob, &score); err != nil {
			return nil, err
		}
		payload := map[string]interface{}{}
		if len(blob) > 0 {
			if err := json.Unmarshal(blob, &payload); err != nil {
				return nil, fmt.Errorf("decode payload: %w", err)
			}
		}
		results = append(results, ScoredPoint{Score: float32(score), Payload: payload})
	}
	return results, rows.Err()
}

func (s *PgStore) Count(ctx context.Context, collection string) (int64, error) {
	table, err := tableName(collection)
	if err != nil {
		return 0, err
	}
	var count int64
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table))
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
