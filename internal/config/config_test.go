package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/okian/teamfit/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.TaskQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DefaultRankLimit, convey.ShouldEqual, 5)
			convey.So(cfg.EmptyRequirementCoverage, convey.ShouldEqual, 1.0)
			convey.So(cfg.EmbeddingDimension, convey.ShouldEqual, 384)
			convey.So(cfg.EmbeddingBackend, convey.ShouldEqual, config.EmbeddingBackendHash)
			convey.So(cfg.VectorStore, convey.ShouldEqual, config.VectorStoreMemory)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"zero default limit", func(c *config.Config) { c.DefaultRankLimit = 0 }},
			{"max below default", func(c *config.Config) { c.MaxRankLimit = 2 }},
			{"fractional empty policy", func(c *config.Config) { c.EmptyRequirementCoverage = 0.5 }},
			{"negative prefilter", func(c *config.Config) { c.PrefilterK = -1 }},
			{"unknown backend", func(c *config.Config) { c.EmbeddingBackend = "bert" }},
			{"openai without key", func(c *config.Config) { c.EmbeddingBackend = config.EmbeddingBackendOpenAI }},
			{"postgres without url", func(c *config.Config) { c.VectorStore = config.VectorStorePostgres }},
			{"unknown store", func(c *config.Config) { c.VectorStore = "faiss" }},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				tc.mutate(cfg)

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					err := cfg.Validate()
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When the empty requirement policy is zero", func() {
			cfg.EmptyRequirementCoverage = 0

			convey.Convey("Then it is accepted", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
