package embedding

import (
	"time"

	"github.com/okian/teamfit/pkg/logger"
)

// Option configures a Generator.
type Option func(*Generator)

// WithDimension sets the dimension every produced vector must have.
func WithDimension(dim int) Option {
	return func(g *Generator) {
		if dim > 0 {
			g.dim = dim
		}
	}
}

// WithTimeout bounds a single Encode call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the generator logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}
