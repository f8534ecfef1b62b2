// Package embedding turns text into unit-length vectors using an explicitly
// loaded model.
package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/teamfit/internal/domain/model"
)

// Model encodes text into a raw (not necessarily normalized) vector.
type Model interface {
	Name() string
	Dimension() int
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Loader constructs a Model. It is called once by Runtime.Load.
type Loader func(ctx context.Context) (Model, error)

// Runtime owns the model lifecycle. The model is loaded once at startup
// and is read-only afterwards.
type Runtime struct {
	loader Loader

	once  sync.Once
	mu    sync.RWMutex
	model Model
	err   error
}

// NewRuntime returns a Runtime that will load its model with loader.
func NewRuntime(loader Loader) *Runtime {
	return &Runtime{loader: loader}
}

// Static returns an already-loaded Runtime wrapping m.
func Static(m Model) *Runtime {
	r := &Runtime{model: m}
	r.once.Do(func() {})
	return r
}

// Load runs the loader exactly once. Later calls return the first result.
func (r *Runtime) Load(ctx context.Context) error {
	r.once.Do(func() {
		m, err := r.loader(ctx)
		if err == nil && m == nil {
			err = fmt.Errorf("loader returned no model")
		}
		r.mu.Lock()
		r.model, r.err = m, err
		r.mu.Unlock()
	})
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return fmt.Errorf("%w: load: %w", model.ErrModelUnavailable, r.err)
	}
	return nil
}

// Model returns the loaded model or ErrModelUnavailable.
func (r *Runtime) Model() (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, fmt.Errorf("%w: load: %w", model.ErrModelUnavailable, r.err)
	}
	if r.model == nil {
		return nil, fmt.Errorf("%w: model not loaded", model.ErrModelUnavailable)
	}
	return r.model, nil
}
