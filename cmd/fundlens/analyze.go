package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fundlens/fundlens/internal/analysis"
	"github.com/fundlens/fundlens/internal/kickstarter"
)

var (
	analyzeInput     string
	analyzeTimeframe string
	analyzeCategory  string
	analyzeSort      string
	analyzeEndDate   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Aggregate reports over the web database",
}

var analyzeTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Project counts, funds and success rates over time",
	Long: `Compute total projects, funds raised and success rate for the selected
timeframe and category, with percentage changes against the immediately
preceding equal-length window. Timeframe N/A analyzes the full database.

Example:
  fundlens analyze trends --input Data/website_database.json --timeframe 30d --category games`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := loadDatabase()
		if err != nil {
			return err
		}

		report, err := analysis.Trends(projects, analyzeCategory, analyzeTimeframe, endDateSpec())
		if err != nil {
			return err
		}

		fmt.Printf("\nAnalysis for %s\n", categoryLabel(report.Category))
		if report.Previous == nil {
			fmt.Println("Full database analysis")
			printMetrics("Full Period", report.Recent)
			return nil
		}

		fmt.Printf("Time period: %s\n", report.Timeframe)
		printMetrics("Recent Period", report.Recent)
		printMetrics("Previous Period", *report.Previous)

		fmt.Println("\nPercentage Changes:")
		fmt.Printf("Total Projects: %s\n", analysis.FormatPercent(report.Deltas.TotalProjects))
		fmt.Printf("Total Funds Raised: %s\n", analysis.FormatPercent(report.Deltas.TotalFunds))
		fmt.Printf("Successful Projects: %s\n", analysis.FormatPercent(report.Deltas.SuccessfulProjects))
		fmt.Printf("Success Rate: %s\n", analysis.FormatPercent(report.Deltas.SuccessRate))
		return nil
	},
}

var analyzeCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Category and subcategory breakdown",
	Long: `Break the selected window down by category and subcategory, sorted by
project count or funds raised.

Example:
  fundlens analyze categories --input Data/website_database.json --timeframe 90d --sort funds`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := loadDatabase()
		if err != nil {
			return err
		}

		report, err := analysis.Categories(projects, analyzeTimeframe, endDateSpec(), analyzeSort)
		if err != nil {
			return err
		}

		fmt.Printf("\nCategory breakdown (%s, sorted by %s)\n", report.Timeframe, report.SortBy)
		printGroups("Categories", report.Categories)
		printGroups("Subcategories", report.Subcategories)
		return nil
	},
}

var analyzeBackersCmd = &cobra.Command{
	Use:   "backers",
	Short: "Backer funding patterns and top funded projects",
	Long: `Compute average funding per backer by category and list the top funded
projects for the selected window.

Example:
  fundlens analyze backers --input Data/website_database.json --timeframe 1y`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := loadDatabase()
		if err != nil {
			return err
		}

		report, err := analysis.Backers(projects, analyzeCategory, analyzeTimeframe, endDateSpec())
		if err != nil {
			return err
		}
		if analyzeCategory != "" && analyzeCategory != analysis.FullDatabase && len(report.TopFunded) == 0 {
			return fmt.Errorf("no projects found for category: %s", analyzeCategory)
		}

		fmt.Println("\nAverage Funding per Backer by Category:")
		for _, avg := range report.Averages {
			fmt.Printf("%s: $%.2f\n", avg.Category, avg.FundingPerBacker)
		}

		fmt.Printf("\nTop %d Funded Projects:\n", len(report.TopFunded))
		fmt.Println(strings.Repeat("-", 23))
		for i, p := range report.TopFunded {
			avgPledge := 0.0
			if p.BackersCount > 0 {
				avgPledge = p.PledgedUSD / float64(p.BackersCount)
			}
			fmt.Printf("%d. %s\n", i+1, p.Name)
			fmt.Printf("   Category: %s\n", p.Category)
			fmt.Printf("   Total Pledged: $%.2f\n", p.PledgedUSD)
			fmt.Printf("   Backers: %d\n", p.BackersCount)
			fmt.Printf("   Average Pledge: $%.2f\n", avgPledge)
			fmt.Printf("   URL: %s\n\n", p.Links.Project)
		}
		return nil
	},
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeInput, "input", "Data/website_database.json", "path to web database JSON file")
	analyzeCmd.PersistentFlags().StringVar(&analyzeTimeframe, "timeframe", "30d", "analysis window (7d|30d|90d|180d|1y|2y|N/A)")
	analyzeCmd.PersistentFlags().StringVar(&analyzeCategory, "category", analysis.FullDatabase, "category to analyze (N/A for all)")
	analyzeCmd.PersistentFlags().StringVar(&analyzeEndDate, "end-date", "", "window anchor, dd/mm/yyyy (default: latest deadline in the data)")
	analyzeCategoriesCmd.Flags().StringVar(&analyzeSort, "sort", "projects", "sort order for breakdowns (projects|funds)")

	analyzeCmd.AddCommand(analyzeTrendsCmd)
	analyzeCmd.AddCommand(analyzeCategoriesCmd)
	analyzeCmd.AddCommand(analyzeBackersCmd)
}

func loadDatabase() ([]kickstarter.Project, error) {
	return kickstarter.LoadProjects(analyzeInput)
}

// endDateSpec resolves the window anchor: flag first, then config.
func endDateSpec() string {
	if analyzeEndDate != "" {
		return analyzeEndDate
	}
	return cfg.Analysis.EndDate
}

func categoryLabel(category string) string {
	if category == analysis.FullDatabase || category == "" {
		return "All Categories"
	}
	return category
}

func printMetrics(label string, m analysis.Metrics) {
	fmt.Printf("\n%s: %s\n", label, m.Period())
	fmt.Printf("Total Projects: %d\n", m.TotalProjects)
	fmt.Printf("Total Funds Raised: $%.2f\n", m.TotalFunds)
	fmt.Printf("Successful Projects: %d\n", m.SuccessfulProjects)
	fmt.Printf("Success Rate: %.1f%%\n", m.SuccessRate)
}

func printGroups(label string, groups []analysis.GroupMetrics) {
	fmt.Printf("\n%s:\n", label)
	for _, g := range groups {
		fmt.Printf("%s: %d projects, $%.2f raised, %.1f%% successful\n",
			g.Name, g.TotalProjects, g.TotalFunds, g.SuccessRate)
	}
}
