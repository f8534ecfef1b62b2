// Package vectors provides an in-memory vector.Store.
package vectors

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/metrics"
)

// slot holds the current vector for one key. Writers swap the pointer, so a
// reader sees either the old or the new vector, never a mix.
type slot struct {
	v atomic.Pointer[vector.Vector]
}

// MemoryStore keeps vectors in per-kind sync.Maps of atomic slots. There is
// no global write lock and reads never block.
type MemoryStore struct {
	dim    int
	spaces sync.Map // vector.Kind -> *space
}

type space struct {
	slots sync.Map // id -> *slot
	count atomic.Int64
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithDimension sets the accepted vector dimension.
func WithDimension(dim int) Option {
	return func(s *MemoryStore) {
		if dim > 0 {
			s.dim = dim
		}
	}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{dim: vector.Dim}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ vector.Store = (*MemoryStore)(nil)

func (s *MemoryStore) space(kind vector.Kind) *space {
	if sp, ok := s.spaces.Load(kind); ok {
		return sp.(*space)
	}
	sp, _ := s.spaces.LoadOrStore(kind, &space{})
	return sp.(*space)
}

// Upsert implements vector.Store.
func (s *MemoryStore) Upsert(ctx context.Context, key vector.Key, v vector.Vector) error {
	if key.ID == "" {
		return fmt.Errorf("%w: empty vector key id", model.ErrInvalidInput)
	}
	if err := vector.Check(v, s.dim); err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrInvalidInput, key, err)
	}
	cp := make(vector.Vector, len(v))
	copy(cp, v)

	sp := s.space(key.Kind)
	sl, _ := sp.slots.LoadOrStore(key.ID, &slot{})
	if old := sl.(*slot).v.Swap(&cp); old == nil {
		sp.count.Add(1)
	}
	metrics.RecordVectorUpsert(string(key.Kind))
	metrics.UpdateVectorRecords(string(key.Kind), int(sp.count.Load()))
	return nil
}

func (s *MemoryStore) load(key vector.Key) (vector.Vector, bool) {
	sp, ok := s.spaces.Load(key.Kind)
	if !ok {
		return nil, false
	}
	sl, ok := sp.(*space).slots.Load(key.ID)
	if !ok {
		return nil, false
	}
	p := sl.(*slot).v.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Get implements vector.Store. The returned slice must not be modified.
func (s *MemoryStore) Get(ctx context.Context, key vector.Key) (vector.Vector, error) {
	v, ok := s.load(key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, vector.ErrNotFound)
	}
	return v, nil
}

// Delete implements vector.Store.
func (s *MemoryStore) Delete(ctx context.Context, key vector.Key) error {
	sp, ok := s.spaces.Load(key.Kind)
	if !ok {
		return nil
	}
	sl, ok := sp.(*space).slots.Load(key.ID)
	if !ok {
		return nil
	}
	if old := sl.(*slot).v.Swap(nil); old != nil {
		sp.(*space).count.Add(-1)
	}
	metrics.UpdateVectorRecords(string(key.Kind), int(sp.(*space).count.Load()))
	return nil
}

// Similarity implements vector.Store.
func (s *MemoryStore) Similarity(ctx context.Context, a, b vector.Key) (float64, error) {
	va, ok := s.load(a)
	if !ok {
		return 0, fmt.Errorf("%s: %w", a, vector.ErrNotFound)
	}
	vb, ok := s.load(b)
	if !ok {
		return 0, fmt.Errorf("%s: %w", b, vector.ErrNotFound)
	}
	return vector.Dot(va, vb)
}

// BatchSimilarity implements vector.Store.
func (s *MemoryStore) BatchSimilarity(ctx context.Context, query vector.Key, kind vector.Kind, candidates []string) ([]vector.Scored, error) {
	start := time.Now()
	defer func() { metrics.RecordVectorQueryLatency(float64(time.Since(start).Milliseconds())) }()

	q, ok := s.load(query)
	if !ok {
		return nil, fmt.Errorf("%s: %w", query, vector.ErrNotFound)
	}
	out := make([]vector.Scored, 0, len(candidates))
	for _, id := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, ok := s.load(vector.Key{Kind: kind, ID: id})
		if !ok {
			continue
		}
		score, err := vector.Dot(q, v)
		if err != nil {
			return nil, err
		}
		out = append(out, vector.Scored{ID: id, Score: score})
	}
	SortScored(out)
	return out, nil
}

// Count implements vector.Store.
func (s *MemoryStore) Count(ctx context.Context, kind vector.Kind) (int, error) {
	sp, ok := s.spaces.Load(kind)
	if !ok {
		return 0, nil
	}
	return int(sp.(*space).count.Load()), nil
}

// SortScored orders by score desc, then ID asc.
func SortScored(out []vector.Scored) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
}
