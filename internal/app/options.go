package service

import (
	"time"

	"github.com/okian/teamfit/internal/domain/embedding"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of embedding workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending embedding tasks.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the ingestion fingerprint tracker.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithTaskRetention sets how many finished tasks stay queryable.
// 0 keeps every task.
func WithTaskRetention(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.taskRetention = n
		}
	}
}

// WithRankLimits sets the default and maximum ranking result sizes.
func WithRankLimits(def, maxLimit int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultLimit = def
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// WithPrefilterK narrows ranking scans to the K most similar candidates.
// 0 disables the prefilter.
func WithPrefilterK(k int) Option {
	return func(s *Service) {
		if k >= 0 {
			s.prefilterK = k
		}
	}
}

// WithEmptyRequirementCoverage sets the skill coverage for projects that
// require no skills.
func WithEmptyRequirementCoverage(v float64) Option {
	return func(s *Service) {
		s.emptyCoverage = v
	}
}

// WithEmbeddingRuntime sets the embedding model runtime. It is loaded on Start.
func WithEmbeddingRuntime(rt *embedding.Runtime) Option {
	return func(s *Service) {
		if rt != nil {
			s.runtime = rt
		}
	}
}

// WithEmbeddingDimension sets the vector dimension.
func WithEmbeddingDimension(dim int) Option {
	return func(s *Service) {
		if dim > 0 {
			s.dim = dim
		}
	}
}

// WithEmbeddingTimeout bounds one inference call.
func WithEmbeddingTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.embedTimeout = d
		}
	}
}

// WithVectorStore replaces the default in-memory vector store.
func WithVectorStore(vs vector.Store) Option {
	return func(s *Service) {
		if vs != nil {
			s.vecs = vs
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
