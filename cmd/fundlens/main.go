// Package main implements the fundlens CLI: the batch pipeline that turns
// raw crowdfunding scrape dumps into a cleaned web database and
// model-ready feature rows, plus analysis commands over the database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundlens/fundlens/internal/config"
	"github.com/fundlens/fundlens/internal/logging"
)

var (
	cfgPath   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *zap.Logger

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fundlens",
	Short: "Crowdfunding campaign preprocessing pipeline",
	Long: `fundlens converts raw scraped crowdfunding campaign dumps into a cleaned,
feature-rich dataset for model training.

Stages run in order, each reading the previous stage's output file:

  dedupe -> filter -> webdb -> preinput -> features

The analyze commands consume the webdb output independently, and validate
checks the features output.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if logFormat != "" {
			cfg.Logging.Format = logFormat
		}
		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (console|json)")

	rootCmd.AddCommand(dedupeCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(webdbCmd)
	rootCmd.AddCommand(preinputCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(analyzeCmd)
}
