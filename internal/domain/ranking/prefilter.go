package ranking

import (
	"context"
	"errors"
	"slices"

	"github.com/okian/teamfit/internal/domain/vector"
)

// Prefilter narrows the candidate set of a ranking scan before full scoring.
// Implementations must return a subset of ids.
type Prefilter interface {
	Candidates(ctx context.Context, query vector.Key, kind vector.Kind, ids []string) ([]string, error)
}

// FullScan keeps every candidate.
type FullScan struct{}

// Candidates implements Prefilter.
func (FullScan) Candidates(_ context.Context, _ vector.Key, _ vector.Kind, ids []string) ([]string, error) {
	return ids, nil
}

// SimilarityPrefilter keeps the K candidates most similar to the query by
// embedding. Candidates without a vector fill the remaining slots in id
// order. When the query itself has no vector every candidate is kept.
type SimilarityPrefilter struct {
	Store vector.Store
	K     int
}

// Candidates implements Prefilter.
func (p SimilarityPrefilter) Candidates(ctx context.Context, query vector.Key, kind vector.Kind, ids []string) ([]string, error) {
	if p.K <= 0 || len(ids) <= p.K {
		return ids, nil
	}
	scored, err := p.Store.BatchSimilarity(ctx, query, kind, ids)
	if errors.Is(err, vector.ErrNotFound) {
		return ids, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, p.K)
	seen := make(map[string]struct{}, p.K)
	for _, s := range scored {
		if len(out) == p.K {
			return out, nil
		}
		out = append(out, s.ID)
		seen[s.ID] = struct{}{}
	}
	rest := slices.Clone(ids)
	slices.Sort(rest)
	for _, id := range rest {
		if len(out) == p.K {
			break
		}
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}
