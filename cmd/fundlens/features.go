package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/features"
	"github.com/fundlens/fundlens/internal/kickstarter"
	"github.com/fundlens/fundlens/internal/vectorstore"
)

var (
	featuresInput       string
	featuresOutput      string
	featuresWordVectors string
	featuresStore       bool
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Compute feature rows from the pre-input data",
	Long: `Compute one fixed-shape feature row per campaign: numeric transforms plus
description, blurb/risk, subcategory and country embeddings. Rows are
streamed to the output file as they are produced.

Embedding models are downloaded into the configured cache directory on
first use. The word-vector table (GloVe text format) must be supplied via
--word-vectors or the features.word_vectors_path config key.

Example:
  fundlens features --input Data/pre_inputdata.json --output Data/allProcessed.json --word-vectors Data/glove.6B.100d.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := kickstarter.LoadPreInputs(featuresInput)
		if err != nil {
			return err
		}
		logger.Info("loaded pre-input data", zap.Int("campaigns", len(inputs)))

		wordVectorsPath := featuresWordVectors
		if wordVectorsPath == "" {
			wordVectorsPath = cfg.Features.WordVectorsPath
		}
		if wordVectorsPath == "" {
			return fmt.Errorf("no word-vector table configured (--word-vectors or features.word_vectors_path)")
		}
		words, err := features.LoadWordVectors(wordVectorsPath)
		if err != nil {
			return err
		}
		logger.Info("loaded word vectors",
			zap.Int("vocabulary", words.Len()),
			zap.Int("dimension", words.Dimension()),
		)

		long, err := features.NewFastEmbedEncoder(features.FastEmbedConfig{
			Model:     cfg.Features.DescriptionModel,
			CacheDir:  cfg.Features.ModelCacheDir,
			MaxLength: cfg.Features.MaxLength,
		})
		if err != nil {
			return fmt.Errorf("loading description model: %w", err)
		}
		defer long.Close()

		short, err := features.NewFastEmbedEncoder(features.FastEmbedConfig{
			Model:    cfg.Features.ShortTextModel,
			CacheDir: cfg.Features.ModelCacheDir,
		})
		if err != nil {
			return fmt.Errorf("loading short-text model: %w", err)
		}
		defer short.Close()

		var sink features.Sink
		if featuresStore {
			chromemSink, err := vectorstore.NewChromemSink(vectorstore.Config{
				Path:       cfg.VectorStore.Path,
				Collection: cfg.VectorStore.Collection,
				Compress:   cfg.VectorStore.Compress,
			}, logger)
			if err != nil {
				return fmt.Errorf("opening vector store: %w", err)
			}
			sink = chromemSink
		}

		out, err := os.Create(featuresOutput)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer out.Close()

		processor := features.NewProcessor(long, short, words, inputs, logger)
		logger.Info("starting feature processing",
			zap.Int("campaigns", len(inputs)),
			zap.Strings("categories", processor.Categories()),
		)

		count, err := processor.Run(cmd.Context(), inputs, out, sink)
		if err != nil {
			return err
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("closing output: %w", err)
		}

		logger.Info("processed campaigns saved",
			zap.String("path", featuresOutput),
			zap.Int("rows", count),
		)
		return nil
	},
}

func init() {
	featuresCmd.Flags().StringVar(&featuresInput, "input", "", "path to pre-input JSON file")
	featuresCmd.Flags().StringVar(&featuresOutput, "output", "", "path to feature rows JSON output")
	featuresCmd.Flags().StringVar(&featuresWordVectors, "word-vectors", "", "path to GloVe text-format word vectors")
	featuresCmd.Flags().BoolVar(&featuresStore, "store", false, "also store description embeddings in the embedded vector store")
	_ = featuresCmd.MarkFlagRequired("input")
	_ = featuresCmd.MarkFlagRequired("output")
}
