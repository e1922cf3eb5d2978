package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/kickstarter"
	"github.com/fundlens/fundlens/internal/preinput"
)

var (
	preinputDatabase     string
	preinputDescriptions string
	preinputOutput       string
)

var preinputCmd = &cobra.Command{
	Use:   "preinput",
	Short: "Assemble the feature-processor input",
	Long: `Join the web database with page-scraped descriptions, clean the text and
compute creator-history metrics, producing the pre-input file consumed by
the features stage.

When --descriptions is omitted, the description and risk text embedded in
the web database is used.

Example:
  fundlens preinput --database Data/website_database.json --descriptions RawData/project_descriptions.json --output Data/pre_inputdata.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := kickstarter.LoadProjects(preinputDatabase)
		if err != nil {
			return err
		}

		var descriptions []kickstarter.DescriptionRecord
		if preinputDescriptions != "" {
			descriptions, err = loadDescriptions(preinputDescriptions)
			if err != nil {
				return err
			}
		}

		rows, err := preinput.Build(projects, descriptions, logger)
		if err != nil {
			return err
		}

		if err := kickstarter.WriteJSONFile(preinputOutput, rows); err != nil {
			return err
		}
		logger.Info("pre-input data saved",
			zap.String("path", preinputOutput),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

func init() {
	preinputCmd.Flags().StringVar(&preinputDatabase, "database", "", "path to web database JSON file")
	preinputCmd.Flags().StringVar(&preinputDescriptions, "descriptions", "", "path to page-scraped descriptions JSON file (optional)")
	preinputCmd.Flags().StringVar(&preinputOutput, "output", "", "path to pre-input JSON output")
	_ = preinputCmd.MarkFlagRequired("database")
	_ = preinputCmd.MarkFlagRequired("output")
}

// loadDescriptions reads a page-scrape file (JSON array of records).
func loadDescriptions(path string) ([]kickstarter.DescriptionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening descriptions: %w", err)
	}
	defer f.Close()

	var records []kickstarter.DescriptionRecord
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding descriptions %s: %w", path, err)
	}
	return records, nil
}
