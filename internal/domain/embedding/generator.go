package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/logger"
	"github.com/okian/teamfit/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Generator produces normalized embeddings of a fixed dimension.
type Generator struct {
	rt      *Runtime
	dim     int
	timeout time.Duration
	log     logger.Logger
}

// NewGenerator returns a Generator backed by rt.
func NewGenerator(rt *Runtime, opts ...Option) *Generator {
	g := &Generator{
		rt:      rt,
		dim:     vector.Dim,
		timeout: defaultTimeout,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dimension returns the output dimension.
func (g *Generator) Dimension() int { return g.dim }

// Embed encodes text into a unit vector. Identical text and model always
// produce the identical vector.
func (g *Generator) Embed(ctx context.Context, text string) (vector.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", model.ErrInvalidInput)
	}
	m, err := g.rt.Model()
	if err != nil {
		return nil, err
	}
	backend := m.Name()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	raw, err := m.Encode(ctx, text)
	metrics.RecordEmbeddingLatency(backend, float64(time.Since(start).Milliseconds()))
	if err != nil {
		kind := "backend"
		if errors.Is(err, context.DeadlineExceeded) {
			kind = "timeout"
		}
		metrics.RecordEmbeddingError(backend, kind)
		g.log.Warn(ctx, "embedding failed", logger.String("backend", backend), logger.String("kind", kind), logger.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", model.ErrModelUnavailable, backend, err)
	}
	if len(raw) != g.dim {
		metrics.RecordEmbeddingError(backend, "dimension")
		return nil, fmt.Errorf("%w: %s returned dimension %d, want %d", model.ErrModelUnavailable, backend, len(raw), g.dim)
	}

	v, err := vector.Normalize(raw)
	if err != nil {
		metrics.RecordEmbeddingError(backend, "empty")
		return nil, fmt.Errorf("%w: text has no embeddable content", model.ErrInvalidInput)
	}
	return v, nil
}
