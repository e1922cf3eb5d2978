package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix is stripped from environment variables before mapping them
	// onto config keys: FUNDLENS_LOGGING_LEVEL -> logging.level.
	envPrefix = "FUNDLENS_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load loads configuration with the following precedence (highest first):
//
//  1. Environment variables (FUNDLENS_LOGGING_LEVEL, FUNDLENS_FEATURES_MAX_LENGTH, ...)
//  2. YAML config file (optional, passed via --config)
//  3. Hardcoded defaults
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Use rawbytes provider to avoid re-opening the file
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Override with environment variables. Split on the first underscore
	// only (section.field_name pattern), so FEATURES_MODEL_CACHE_DIR maps
	// to features.model_cache_dir.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Features.DescriptionModel == "" {
		cfg.Features.DescriptionModel = "BAAI/bge-base-en-v1.5"
	}
	if cfg.Features.ShortTextModel == "" {
		cfg.Features.ShortTextModel = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Features.ModelCacheDir == "" {
		cfg.Features.ModelCacheDir = "local_cache"
	}
	if cfg.Features.MaxLength == 0 {
		cfg.Features.MaxLength = 512
	}

	if cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = "Data/vectorstore"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "campaign_descriptions"
	}
}
