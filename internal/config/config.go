// Package config defines service configuration and its loading from
// defaults, an optional YAML file and TEAMFIT_ environment variables.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Embedding backends.
const (
	EmbeddingBackendHash   = "hash"
	EmbeddingBackendOpenAI = "openai"
)

// Vector store implementations.
const (
	VectorStoreMemory   = "memory"
	VectorStorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TaskQueueSize bounds the in-memory embedding task queue.
	TaskQueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of embedding workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the ingestion fingerprint tracker.
	DedupeSize int `koanf:"dedupe_size"`
	// TaskRetention is how many finished tasks stay queryable.
	TaskRetention int `koanf:"task_retention"`

	DefaultRankLimit int `koanf:"default_rank_limit"`
	MaxRankLimit     int `koanf:"max_rank_limit"`

	// EmptyRequirementCoverage is the skill coverage reported for a project
	// that requires no skills. Only 0 and 1 are accepted.
	EmptyRequirementCoverage float64 `koanf:"empty_requirement_coverage"`

	// PrefilterK > 0 narrows ranking candidates to the K most similar by
	// embedding before full scoring. 0 scores every candidate.
	PrefilterK int `koanf:"prefilter_k"`

	EmbeddingBackend   string `koanf:"embedding_backend"`
	EmbeddingModel     string `koanf:"embedding_model"`
	EmbeddingDimension int    `koanf:"embedding_dimension"`
	EmbeddingTimeoutMS int    `koanf:"embedding_timeout_ms"`
	OpenAIAPIKey       string `koanf:"openai_api_key"`
	OpenAIBaseURL      string `koanf:"openai_base_url"`

	// VectorStore selects memory or postgres. DatabaseURL is required for postgres.
	VectorStore string `koanf:"vector_store"`
	DatabaseURL string `koanf:"database_url"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":9080",
		TaskQueueSize:            10_000,
		WorkerCount:              runtime.NumCPU(),
		DedupeSize:               100_000,
		TaskRetention:            50_000,
		DefaultRankLimit:         5,
		MaxRankLimit:             100,
		EmptyRequirementCoverage: 1.0,
		PrefilterK:               0,
		EmbeddingBackend:         EmbeddingBackendHash,
		EmbeddingModel:           "text-embedding-3-small",
		EmbeddingDimension:       384,
		EmbeddingTimeoutMS:       10_000,
		VectorStore:              VectorStoreMemory,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TaskQueueSize < 0, c.WorkerCount < 0, c.DedupeSize < 0, c.TaskRetention < 0:
		return fmt.Errorf("%w: queue_size, worker_count, dedupe_size and task_retention must not be negative", ErrInvalidConfig)
	case c.DefaultRankLimit <= 0:
		return fmt.Errorf("%w: default_rank_limit must be positive", ErrInvalidConfig)
	case c.MaxRankLimit < c.DefaultRankLimit:
		return fmt.Errorf("%w: max_rank_limit must be >= default_rank_limit", ErrInvalidConfig)
	case c.EmptyRequirementCoverage != 0 && c.EmptyRequirementCoverage != 1:
		return fmt.Errorf("%w: empty_requirement_coverage must be 0 or 1", ErrInvalidConfig)
	case c.PrefilterK < 0:
		return fmt.Errorf("%w: prefilter_k must not be negative", ErrInvalidConfig)
	case c.EmbeddingDimension <= 0:
		return fmt.Errorf("%w: embedding_dimension must be positive", ErrInvalidConfig)
	case c.EmbeddingTimeoutMS <= 0:
		return fmt.Errorf("%w: embedding_timeout_ms must be positive", ErrInvalidConfig)
	}

	switch strings.ToLower(c.EmbeddingBackend) {
	case EmbeddingBackendHash:
	case EmbeddingBackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: openai_api_key is required for the openai backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown embedding_backend %q", ErrInvalidConfig, c.EmbeddingBackend)
	}

	switch strings.ToLower(c.VectorStore) {
	case VectorStoreMemory:
	case VectorStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for the postgres vector store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown vector_store %q", ErrInvalidConfig, c.VectorStore)
	}
	return nil
}
