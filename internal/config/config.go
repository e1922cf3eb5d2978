// Package config provides configuration loading for fundlens.
package config

import (
	"fmt"

	"github.com/fundlens/fundlens/internal/logging"
)

// Config is the root configuration for all pipeline stages.
type Config struct {
	Logging     logging.Config    `koanf:"logging"`
	Features    FeaturesConfig    `koanf:"features"`
	Analysis    AnalysisConfig    `koanf:"analysis"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
}

// FeaturesConfig configures the feature-extraction stage.
type FeaturesConfig struct {
	// DescriptionModel encodes campaign descriptions (768-dim).
	DescriptionModel string `koanf:"description_model"`
	// ShortTextModel encodes blurbs and risk statements (384-dim).
	ShortTextModel string `koanf:"short_text_model"`
	// WordVectorsPath points to a GloVe text-format vector file used for
	// subcategory and country lookups.
	WordVectorsPath string `koanf:"word_vectors_path"`
	// ModelCacheDir is where downloaded ONNX models are cached.
	ModelCacheDir string `koanf:"model_cache_dir"`
	// MaxLength is the token truncation limit for the description model.
	MaxLength int `koanf:"max_length"`
}

// AnalysisConfig configures the analyze commands.
type AnalysisConfig struct {
	// EndDate anchors the analysis windows, dd/mm/yyyy. Empty means the
	// latest deadline found in the database.
	EndDate string `koanf:"end_date"`
}

// VectorStoreConfig configures the optional embedded vector sink.
type VectorStoreConfig struct {
	Path       string `koanf:"path"`
	Collection string `koanf:"collection"`
	Compress   bool   `koanf:"compress"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Features.MaxLength < 0 {
		return fmt.Errorf("features: max_length must be >= 0")
	}
	if c.Features.DescriptionModel == "" {
		return fmt.Errorf("features: description_model must not be empty")
	}
	if c.Features.ShortTextModel == "" {
		return fmt.Errorf("features: short_text_model must not be empty")
	}
	return nil
}
