// Package postgres provides a vector.Store backed by PostgreSQL with the
// pgvector extension.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/metrics"
)

// Store persists vectors in a single match_vectors table keyed by (kind, id).
// Each upsert is a single-row statement, which gives per-key atomicity.
type Store struct {
	pool *pgxpool.Pool
	dim  int
}

var _ vector.Store = (*Store)(nil)

// Open connects to connString, verifies the connection and ensures the schema.
func Open(ctx context.Context, connString string, dim int) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := New(pool, dim)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, dim int) *Store {
	if dim <= 0 {
		dim = vector.Dim
	}
	return &Store{pool: pool, dim: dim}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the extension and table if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS match_vectors (
			kind       TEXT        NOT NULL,
			id         TEXT        NOT NULL,
			embedding  vector(%d)  NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (kind, id)
		)`, s.dim),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// Upsert implements vector.Store.
func (s *Store) Upsert(ctx context.Context, key vector.Key, v vector.Vector) error {
	if key.ID == "" {
		return fmt.Errorf("%w: empty vector key id", model.ErrInvalidInput)
	}
	if err := vector.Check(v, s.dim); err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrInvalidInput, key, err)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_vectors (kind, id, embedding, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (kind, id) DO UPDATE
		SET embedding = EXCLUDED.embedding, updated_at = EXCLUDED.updated_at`,
		string(key.Kind), key.ID, pgvector.NewVector(v))
	if err != nil {
		metrics.RecordErrorByComponent("vector_store", "upsert")
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	metrics.RecordVectorUpsert(string(key.Kind))
	return nil
}

// Get implements vector.Store.
func (s *Store) Get(ctx context.Context, key vector.Key) (vector.Vector, error) {
	var pv pgvector.Vector
	err := s.pool.QueryRow(ctx,
		`SELECT embedding FROM match_vectors WHERE kind = $1 AND id = $2`,
		string(key.Kind), key.ID).Scan(&pv)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", key, vector.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return vector.Vector(pv.Slice()), nil
}

// Delete implements vector.Store.
func (s *Store) Delete(ctx context.Context, key vector.Key) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM match_vectors WHERE kind = $1 AND id = $2`,
		string(key.Kind), key.ID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Similarity implements vector.Store. The <#> operator returns the negated
// inner product.
func (s *Store) Similarity(ctx context.Context, a, b vector.Key) (float64, error) {
	var score *float64
	err := s.pool.QueryRow(ctx, `
		SELECT (x.embedding <#> y.embedding) * -1
		FROM match_vectors x, match_vectors y
		WHERE x.kind = $1 AND x.id = $2 AND y.kind = $3 AND y.id = $4`,
		string(a.Kind), a.ID, string(b.Kind), b.ID).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s or %s: %w", a, b, vector.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to compare %s and %s: %w", a, b, err)
	}
	if score == nil {
		return 0, fmt.Errorf("%s or %s: %w", a, b, vector.ErrNotFound)
	}
	return *score, nil
}

// BatchSimilarity implements vector.Store.
func (s *Store) BatchSimilarity(ctx context.Context, query vector.Key, kind vector.Kind, candidates []string) ([]vector.Scored, error) {
	start := time.Now()
	defer func() { metrics.RecordVectorQueryLatency(float64(time.Since(start).Milliseconds())) }()

	q, err := s.Get(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []vector.Scored{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, (embedding <#> $1) * -1 AS score
		FROM match_vectors
		WHERE kind = $2 AND id = ANY($3)
		ORDER BY score DESC, id COLLATE "C" ASC`,
		pgvector.NewVector(q), string(kind), candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to batch score against %s: %w", query, err)
	}
	defer rows.Close()

	out := make([]vector.Scored, 0, len(candidates))
	for rows.Next() {
		var sc vector.Scored
		if err := rows.Scan(&sc.ID, &sc.Score); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scores: %w", err)
	}
	return out, nil
}

// Count implements vector.Store.
func (s *Store) Count(ctx context.Context, kind vector.Kind) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM match_vectors WHERE kind = $1`, string(kind)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s vectors: %w", kind, err)
	}
	metrics.UpdateVectorRecords(string(kind), n)
	return n, nil
}
