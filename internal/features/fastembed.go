package features

import (
	"context"
	"fmt"
	"sync"

	fastembed "github.com/anush008/fastembed-go"
)

// FastEmbedConfig holds configuration for a local ONNX text encoder.
type FastEmbedConfig struct {
	// Model is the embedding model name.
	// Supported: BAAI/bge-base-en-v1.5 (768, descriptions),
	// sentence-transformers/all-MiniLM-L6-v2 (384, blurbs/risks), and the
	// other BGE variants fastembed ships.
	Model string

	// CacheDir is the directory to cache downloaded model files.
	CacheDir string

	// MaxLength is the token truncation limit. Text beyond it is dropped,
	// keeping the leading tokens. Defaults to 512.
	MaxLength int
}

// modelMapping maps friendly model names to fastembed model constants.
var modelMapping = map[string]fastembed.EmbeddingModel{
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-small-en":                      fastembed.BGESmallEN,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"BAAI/bge-base-en":                       fastembed.BGEBaseEN,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
	// Also accept the fastembed model names directly
	"fast-bge-small-en-v1.5": fastembed.BGESmallENV15,
	"fast-bge-small-en":      fastembed.BGESmallEN,
	"fast-bge-base-en-v1.5":  fastembed.BGEBaseENV15,
	"fast-bge-base-en":       fastembed.BGEBaseEN,
	"fast-all-MiniLM-L6-v2":  fastembed.AllMiniLML6V2,
}

// modelDimensions maps fastembed models to their embedding widths.
var modelDimensions = map[fastembed.EmbeddingModel]int{
	fastembed.BGESmallENV15: 384,
	fastembed.BGESmallEN:    384,
	fastembed.BGEBaseENV15:  768,
	fastembed.BGEBaseEN:     768,
	fastembed.AllMiniLML6V2: 384,
}

// resolveModel maps a configured model name to a fastembed constant and
// its embedding width.
func resolveModel(name string) (fastembed.EmbeddingModel, int, error) {
	model, ok := modelMapping[name]
	if !ok {
		model = fastembed.EmbeddingModel(name)
	}
	dim, known := modelDimensions[model]
	if !known {
		return "", 0, fmt.Errorf("%w: unsupported model %q", ErrInvalidConfig, name)
	}
	return model, dim, nil
}

// FastEmbedEncoder encodes text with a local ONNX model. Tokenization,
// truncation and mean pooling are owned by the fastembed runtime.
type FastEmbedEncoder struct {
	model     *fastembed.FlagEmbedding
	modelName string
	dimension int
	mu        sync.RWMutex
}

// NewFastEmbedEncoder creates an encoder, downloading the model into the
// cache directory on first use.
func NewFastEmbedEncoder(cfg FastEmbedConfig) (*FastEmbedEncoder, error) {
	model, dimension, err := resolveModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = "local_cache"
	}
	maxLength := cfg.MaxLength
	if maxLength == 0 {
		maxLength = 512
	}

	// No progress bar; runs are non-interactive.
	showProgress := false

	flagEmbed, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            maxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing FastEmbed model %s: %w", cfg.Model, err)
	}

	return &FastEmbedEncoder{
		model:     flagEmbed,
		modelName: cfg.Model,
		dimension: dimension,
	}, nil
}

// Encode generates an embedding for a single text.
func (e *FastEmbedEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	embeddings, err := e.model.Embed([]string{text}, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("%w: got %d embeddings for one input", ErrEmbeddingFailed, len(embeddings))
	}
	return embeddings[0], nil
}

// Dimension returns the embedding width for the configured model.
func (e *FastEmbedEncoder) Dimension() int {
	return e.dimension
}

// Close releases the underlying ONNX session.
func (e *FastEmbedEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model != nil {
		return e.model.Destroy()
	}
	return nil
}
