package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/dedupe"
	"github.com/fundlens/fundlens/internal/filter"
	"github.com/fundlens/fundlens/internal/kickstarter"
	"github.com/fundlens/fundlens/internal/webdb"
)

var (
	dedupeInput  string
	dedupeOutput string
	dedupeStats  string

	filterInput  string
	filterOutput string
	filterStats  string

	webdbInput  string
	webdbOutput string
	webdbStats  string
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate projects from a raw scrape dump",
	Long: `Remove duplicate projects from a raw scrape dump (JSONL), keeping the
first occurrence per project id.

Example:
  fundlens dedupe --input RawData/scrape.json --output Data/deduplicated.json --stats Data/duplicate_stats.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStreamStage(dedupeInput, dedupeOutput, dedupeStats, func(in *os.File, out *os.File) (any, error) {
			return dedupe.Run(in, out, logger)
		})
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep projects with a usable lifecycle state",
	Long: `Keep successful and failed projects, convert canceled projects to failed
when at most 60% of the campaign time remained at cancellation, and drop
everything else.

Example:
  fundlens filter --input Data/deduplicated.json --output Data/filtered.json --stats Data/filtering_stats.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStreamStage(filterInput, filterOutput, filterStats, func(in *os.File, out *os.File) (any, error) {
			return filter.Run(in, out, logger)
		})
	},
}

var webdbCmd = &cobra.Command{
	Use:   "webdb",
	Short: "Build the normalized web database",
	Long: `Map filtered scrape lines onto the normalized web-database schema:
USD amounts, campaign duration in days, parent category, formatted dates,
media counts and links.

Example:
  fundlens webdb --input Data/filtered.json --output Data/website_database.json --stats Data/web_processing_stats.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStreamStage(webdbInput, webdbOutput, webdbStats, func(in *os.File, out *os.File) (any, error) {
			return webdb.NewBuilder(logger).Run(in, out)
		})
	},
}

func init() {
	dedupeCmd.Flags().StringVar(&dedupeInput, "input", "", "path to raw scrape JSONL file")
	dedupeCmd.Flags().StringVar(&dedupeOutput, "output", "", "path to deduplicated JSONL output")
	dedupeCmd.Flags().StringVar(&dedupeStats, "stats", "", "path to statistics JSON output (optional)")
	_ = dedupeCmd.MarkFlagRequired("input")
	_ = dedupeCmd.MarkFlagRequired("output")

	filterCmd.Flags().StringVar(&filterInput, "input", "", "path to deduplicated JSONL file")
	filterCmd.Flags().StringVar(&filterOutput, "output", "", "path to filtered JSONL output")
	filterCmd.Flags().StringVar(&filterStats, "stats", "", "path to statistics JSON output (optional)")
	_ = filterCmd.MarkFlagRequired("input")
	_ = filterCmd.MarkFlagRequired("output")

	webdbCmd.Flags().StringVar(&webdbInput, "input", "", "path to filtered JSONL file")
	webdbCmd.Flags().StringVar(&webdbOutput, "output", "", "path to web database JSON output")
	webdbCmd.Flags().StringVar(&webdbStats, "stats", "", "path to statistics JSON output (optional)")
	_ = webdbCmd.MarkFlagRequired("input")
	_ = webdbCmd.MarkFlagRequired("output")
}

// runStreamStage wires a file-to-file stage: open input, create output,
// run, then write the stats document when requested.
func runStreamStage(inputPath, outputPath, statsPath string, run func(in *os.File, out *os.File) (any, error)) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	stats, err := run(in, out)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	if statsPath != "" {
		if err := kickstarter.WriteJSONFile(statsPath, stats); err != nil {
			return err
		}
		logger.Info("statistics saved", zap.String("path", statsPath))
	}
	return nil
}
