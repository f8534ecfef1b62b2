// Package openai adapts the OpenAI embeddings API to embedding.Model.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "text-embedding-3-small"
	// DefaultDimension matches the service-wide embedding size.
	DefaultDimension = 384
)

// Model calls the embeddings endpoint with a fixed output dimension.
type Model struct {
	client    openai.Client
	model     string
	dimension int
}

type options struct {
	model      string
	dimension  int
	baseURL    string
	maxRetries int
}

// Option configures a Model.
type Option func(*options)

// WithModel overrides the embedding model name.
func WithModel(name string) Option {
	return func(o *options) {
		if name != "" {
			o.model = name
		}
	}
}

// WithDimension requests vectors of the given size.
func WithDimension(dim int) Option {
	return func(o *options) {
		if dim > 0 {
			o.dimension = dim
		}
	}
}

// WithBaseURL points the client at a compatible server.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithMaxRetries sets the client retry budget.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// New returns a Model authenticated with apiKey.
func New(apiKey string, opts ...Option) *Model {
	o := options{model: DefaultModel, dimension: DefaultDimension, maxRetries: 2}
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(o.maxRetries),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}

	return &Model{
		client:    openai.NewClient(reqOpts...),
		model:     o.model,
		dimension: o.dimension,
	}
}

func (m *Model) Name() string   { return "openai" }
func (m *Model) Dimension() int { return m.dimension }

// Encode requests a single embedding.
func (m *Model) Encode(ctx context.Context, text string) ([]float32, error) {
	resp, err := m.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      openai.EmbeddingModel(m.model),
		Input:      openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Dimensions: openai.Int(int64(m.dimension)),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("create embedding: empty response")
	}

	src := resp.Data[0].Embedding
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v)
	}
	return out, nil
}
