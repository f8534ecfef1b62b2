package embedding

import (
	"context"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"
)

const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
	trigramWeight = 0.25
)

// HashModel is a deterministic feature-hashing encoder. Word unigrams,
// word bigrams and character trigrams are hashed with xxhash into signed
// buckets. It needs no network or weights.
type HashModel struct {
	dim int
}

// NewHashModel returns a HashModel producing dim-dimensional vectors.
func NewHashModel(dim int) *HashModel {
	return &HashModel{dim: dim}
}

func (h *HashModel) Name() string   { return "hash" }
func (h *HashModel) Dimension() int { return h.dim }

// Encode never fails except on cancellation. Text without word characters
// encodes to the zero vector.
func (h *HashModel) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float32, h.dim)
	words := tokenize(text)
	for i, w := range words {
		h.add(out, "w:"+w, unigramWeight)
		if i > 0 {
			h.add(out, "b:"+words[i-1]+" "+w, bigramWeight)
		}
		padded := []rune("^" + w + "$")
		for j := 0; j+3 <= len(padded); j++ {
			h.add(out, "c:"+string(padded[j:j+3]), trigramWeight)
		}
	}
	return out, nil
}

func (h *HashModel) add(out []float32, feature string, weight float32) {
	sum := xxhash.Sum64String(feature)
	idx := sum % uint64(len(out))
	if sum>>63 == 1 {
		weight = -weight
	}
	out[idx] += weight
}

// tokenize folds case and splits on anything that is not a letter, digit,
// '+' or '#', so "C++" and "C#" survive as tokens.
func tokenize(text string) []string {
	folded := cases.Fold().String(text)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
