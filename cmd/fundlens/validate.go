package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fundlens/fundlens/internal/features"
	"github.com/fundlens/fundlens/internal/kickstarter"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate embeddings in a feature rows file",
	Long: `Check every embedding in a feature rows file: expected width, no NaN or
infinite values, not all zeros, not all identical, variance above the flat
threshold. Exits non-zero when any campaign has findings.

Example:
  fundlens validate --input Data/allProcessed.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(validateInput)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()

		var rows []kickstarter.FeatureRow
		if err := json.NewDecoder(bufio.NewReader(f)).Decode(&rows); err != nil {
			return fmt.Errorf("decoding %s: %w", validateInput, err)
		}

		widths := features.DefaultWidths()
		problems := make(map[string][]string)
		for _, row := range rows {
			findings := features.ValidateRow(features.FeatureRowVectors{
				Description: row.DescriptionEmbedding,
				Blurb:       row.BlurbEmbedding,
				Risk:        row.RiskEmbedding,
				Category:    row.CategoryEmbedding,
				Subcategory: row.SubcategoryEmbedding,
				Country:     row.CountryEmbedding,
			}, widths)
			if len(findings) > 0 {
				problems[row.ID] = findings
			}
		}

		if len(problems) == 0 {
			fmt.Println("All embeddings passed validation")
			return nil
		}

		ids := make([]string, 0, len(problems))
		for id := range problems {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Printf("Found %d campaigns with issues:\n", len(problems))
		for _, id := range ids {
			fmt.Printf("\nCampaign %s:\n", id)
			for _, finding := range problems[id] {
				fmt.Printf("  - %s\n", finding)
			}
		}
		return fmt.Errorf("%d campaigns failed validation", len(problems))
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateInput, "input", "", "path to feature rows JSON file")
	_ = validateCmd.MarkFlagRequired("input")
}
