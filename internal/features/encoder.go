// Package features turns pre-input rows into fixed-shape feature rows:
// numeric transforms plus text and categorical embeddings.
package features

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig indicates an unusable encoder configuration.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrEmptyInput indicates empty input text.
	ErrEmptyInput = errors.New("empty input")
	// ErrEmbeddingFailed indicates a model inference failure.
	ErrEmbeddingFailed = errors.New("embedding failed")
)

// Encoder produces fixed-width embeddings for text. The pipeline is
// decoupled from the concrete model choice through this interface: the
// description encoder, the blurb/risk encoder and the word-vector lookup
// are all Encoders of different widths.
type Encoder interface {
	// Encode returns an embedding of exactly Dimension() values.
	Encode(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the embedding width.
	Dimension() int
	// Close releases resources held by the encoder.
	Close() error
}

// ZeroVector returns the all-zero embedding of the given width, used as
// the fallback for missing text and inference failures.
func ZeroVector(dim int) []float32 {
	return make([]float32, dim)
}
