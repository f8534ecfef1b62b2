package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "TEAMFIT_"
	envConfig  = "TEAMFIT_CONFIG"
	koanfDelim = "."
)

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. YAML file named by TEAMFIT_CONFIG, if set
//  3. environment variables with the TEAMFIT_ prefix
func Load(ctx context.Context) (*Config, error) {
	k := koanf.New(koanfDelim)

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TEAMFIT_QUEUE_SIZE -> queue_size. Underscores are kept so keys stay flat.
	envProvider := env.Provider(envPrefix, koanfDelim, func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// the file path itself is not a config key
	k.Delete("config")

	cfg := New(ctx)
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.EmbeddingBackend = strings.ToLower(strings.TrimSpace(cfg.EmbeddingBackend))
	cfg.VectorStore = strings.ToLower(strings.TrimSpace(cfg.VectorStore))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
