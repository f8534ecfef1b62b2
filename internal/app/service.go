// Package service wires the matching engine together: the entity catalog,
// team profile cache, scoring and ranking, and the embedding task pipeline
// that runs on a bounded queue and worker pool.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/teamfit/internal/adapters/mq/queue"
	"github.com/okian/teamfit/internal/adapters/mq/worker"
	"github.com/okian/teamfit/internal/adapters/repository/board"
	"github.com/okian/teamfit/internal/adapters/repository/catalog"
	"github.com/okian/teamfit/internal/adapters/repository/vectors"
	"github.com/okian/teamfit/internal/domain/dedupe"
	"github.com/okian/teamfit/internal/domain/embedding"
	"github.com/okian/teamfit/internal/domain/ranking"
	"github.com/okian/teamfit/internal/domain/scoring"
	"github.com/okian/teamfit/internal/domain/team"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/logger"
)

const (
	defaultQueueSize     = 10_000
	defaultDedupeSize    = 100_000
	defaultTaskRetention = 50_000
	defaultEmbedTimeout  = 10 * time.Second

	// writeStripes is the number of locks guarding vector writes per key.
	writeStripes = 64
)

// Service owns every component of the matching engine.
type Service struct {
	workerCount   int
	queueSize     int
	dedupeSize    int
	taskRetention int
	defaultLimit  int
	maxLimit      int
	prefilterK    int
	emptyCoverage float64
	dim           int
	embedTimeout  time.Duration
	runtime       *embedding.Runtime
	vecs          vector.Store
	logger        logger.Logger

	catalog *catalog.Catalog
	cache   *team.Cache
	engine  *scoring.Engine
	ranking *ranking.Service
	board   *board.Board
	tracker dedupe.Tracker
	gen     *embedding.Generator
	tasks   *taskRegistry

	// latest maps a vector key to the newest task submitted for it. Older
	// tasks that finish later must not overwrite its result.
	latestMu sync.Mutex
	latest   map[vector.Key]string
	stripes  [writeStripes]sync.Mutex

	mu      sync.RWMutex
	started bool
	queue   queue.Queue
	pool    *worker.Pool
	stop    context.CancelFunc
}

// New creates a Service. Components are built eagerly; the embedding model is
// loaded and the workers started by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     defaultQueueSize,
		dedupeSize:    defaultDedupeSize,
		taskRetention: defaultTaskRetention,
		defaultLimit:  ranking.DefaultLimit,
		maxLimit:      100,
		emptyCoverage: scoring.EmptyCoverageVacuous,
		dim:           vector.Dim,
		embedTimeout:  defaultEmbedTimeout,
		logger:        logger.Get().Named("service"),
		latest:        make(map[vector.Key]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.runtime == nil {
		s.runtime = embedding.Static(embedding.NewHashModel(s.dim))
	}
	if s.vecs == nil {
		s.vecs = vectors.NewMemoryStore(vectors.WithDimension(s.dim))
	}

	s.catalog = catalog.New()
	s.cache = team.NewCache(s.catalog, s.vecs, s.logger.Named("teams"))
	s.engine = scoring.NewEngine(s.cache, s.catalog, s.vecs,
		scoring.WithEmptyRequirementCoverage(s.emptyCoverage),
		scoring.WithLogger(s.logger.Named("scoring")),
	)

	rankOpts := []ranking.Option{
		ranking.WithDefaultLimit(s.defaultLimit),
		ranking.WithMaxLimit(s.maxLimit),
		ranking.WithLogger(s.logger.Named("ranking")),
	}
	if s.prefilterK > 0 {
		rankOpts = append(rankOpts, ranking.WithPrefilter(ranking.SimilarityPrefilter{Store: s.vecs, K: s.prefilterK}))
	}
	s.ranking = ranking.NewService(s.engine, s.catalog, rankOpts...)

	s.board = board.New()
	s.tracker = dedupe.NewInMemoryTracker(dedupe.WithMaxSize(s.dedupeSize))
	s.gen = embedding.NewGenerator(s.runtime,
		embedding.WithDimension(s.dim),
		embedding.WithTimeout(s.embedTimeout),
		embedding.WithLogger(s.logger.Named("embedding")),
	)
	s.tasks = newTaskRegistry(s.taskRetention)
	return s
}

// Start loads the embedding model and starts the worker pool.
// Workers outlive ctx; use Stop to end them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.runtime.Load(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.stop = cancel
	s.pool.Start(runCtx)
	s.started = true

	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("embedding_dimension", s.dim),
		logger.Int("prefilter_k", s.prefilterK),
	)
	return nil
}

// Stop drains queued tasks and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.stop()
	s.started = false
	s.logger.Info(ctx, "service stopped")
}

// GetStats returns service statistics.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"dedupeSize":         s.dedupeSize,
		"embeddingDimension": s.dim,
		"prefilterK":         s.prefilterK,
		"employees":          len(s.catalog.Employees(ctx)),
		"teams":              len(s.catalog.TeamIDs(ctx)),
		"projects":           len(s.catalog.ProjectIDs(ctx)),
		"evaluations":        s.board.Count(ctx),
		"fingerprints":       s.tracker.Size(),
		"teamProfiles":       s.cache.Len(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["workers"] = s.pool.Size()
	}

	tasks := map[string]int{}
	for status, n := range s.tasks.counts() {
		tasks[string(status)] = n
	}
	stats["tasks"] = tasks

	for _, kind := range []vector.Kind{vector.KindEmployee, vector.KindTeam, vector.KindProject} {
		if n, err := s.vecs.Count(ctx, kind); err == nil {
			stats["vectors_"+string(kind)] = n
		}
	}
	return stats
}

// stripe returns the write lock for key.
func (s *Service) stripe(key vector.Key) *sync.Mutex {
	return &s.stripes[xxhash.Sum64String(key.String())%writeStripes]
}
