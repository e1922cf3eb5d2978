// Package vectorstore persists campaign description embeddings in an
// embedded chromem-go database for similarity inspection.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// ErrInvalidConfig indicates an unusable store configuration.
var ErrInvalidConfig = errors.New("invalid vectorstore config")

// Config holds configuration for the embedded vector store.
type Config struct {
	// Path is the directory for persistent storage.
	Path string
	// Collection is the collection name.
	Collection string
	// Compress enables gzip compression for stored data.
	Compress bool
}

// ChromemSink stores precomputed embeddings in chromem-go.
//
// chromem-go is an embeddable vector database with zero third-party
// dependencies: no external service, persistence to gob files.
type ChromemSink struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *zap.Logger
}

// NewChromemSink opens (or creates) the persistent database and collection.
func NewChromemSink(cfg Config, logger *zap.Logger) (*ChromemSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: path is required", ErrInvalidConfig)
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("%w: collection is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", cfg.Path, err)
	}

	db, err := chromem.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("creating chromem DB: %w", err)
	}

	// All documents arrive with precomputed embeddings; chromem must never
	// fall back to its own embedding function.
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("getting/creating collection %s: %w", cfg.Collection, err)
	}

	logger.Info("vector store opened",
		zap.String("path", cfg.Path),
		zap.String("collection", cfg.Collection),
		zap.Int("documents", collection.Count()),
	)

	return &ChromemSink{db: db, collection: collection, logger: logger}, nil
}

// rejectEmbedding is the chromem embedding function for this store: it is
// never supposed to run because every document carries its embedding.
func rejectEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("vectorstore only accepts precomputed embeddings")
}

// Store adds one campaign description with its embedding.
func (s *ChromemSink) Store(ctx context.Context, id string, text string, embedding []float32) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", ErrInvalidConfig)
	}
	return s.collection.AddDocument(ctx, chromem.Document{
		ID:        id,
		Content:   text,
		Embedding: embedding,
	})
}

// Similar returns the ids of the k stored campaigns closest to embedding.
func (s *ChromemSink) Similar(ctx context.Context, embedding []float32, k int) ([]string, error) {
	if count := s.collection.Count(); k > count {
		k = count
	}
	if k == 0 {
		return nil, nil
	}
	results, err := s.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	ids := make([]string, len(results))
	for i, res := range results {
		ids[i] = res.ID
	}
	return ids, nil
}

// Count returns the number of stored documents.
func (s *ChromemSink) Count() int {
	return s.collection.Count()
}
