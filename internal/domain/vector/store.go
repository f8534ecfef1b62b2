package vector

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key has no stored vector.
var ErrNotFound = errors.New("vector not found")

// Kind partitions the key space by entity type.
type Kind string

const (
	KindEmployee Kind = "employee"
	KindTeam     Kind = "team"
	KindProject  Kind = "project"
)

// Key identifies a stored vector.
type Key struct {
	Kind Kind
	ID   string
}

func (k Key) String() string { return fmt.Sprintf("%s/%s", k.Kind, k.ID) }

// Scored is a candidate with its similarity to a query.
type Scored struct {
	ID    string
	Score float64
}

// Store keeps one normalized vector per key. Upserts replace atomically per
// key; readers never observe a partially written vector.
type Store interface {
	// Upsert replaces the vector for key. Non-unit or wrong-dimension
	// vectors are rejected.
	Upsert(ctx context.Context, key Key, v Vector) error
	// Get returns the vector for key or ErrNotFound.
	Get(ctx context.Context, key Key) (Vector, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key Key) error
	// Similarity returns the inner product of two stored vectors, or
	// ErrNotFound if either is absent.
	Similarity(ctx context.Context, a, b Key) (float64, error)
	// BatchSimilarity scores candidate IDs of kind against query. Results are
	// sorted by score desc then ID asc; absent candidates are omitted.
	// ErrNotFound is returned if the query vector is absent.
	BatchSimilarity(ctx context.Context, query Key, kind Kind, candidates []string) ([]Scored, error)
	// Count returns the number of stored vectors of kind.
	Count(ctx context.Context, kind Kind) (int, error)
}
