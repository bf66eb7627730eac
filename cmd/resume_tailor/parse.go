package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/types"
)

var (
	parseInFile  string
	parseOutFile string
	parseSummary bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract projects from a plain-text résumé",
	Long:  "Run the résumé parse agent over a text file and print the projects it found as JSON. The output can be fed to the merge command.",
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseInFile, "in", "i", "", "Path to the résumé text (required)")
	parseCmd.Flags().StringVarP(&parseOutFile, "out", "o", "", "Write the projects to this file instead of stdout")
	parseCmd.Flags().BoolVar(&parseSummary, "summary", false, "Print a readable summary instead of JSON (JSON still goes to --out)")
	_ = parseCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	text, err := os.ReadFile(parseInFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", parseInFile, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	backends, err := buildAgents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	projects, err := newParser(backends.parse, cfg, logger).Parse(ctx, string(text))
	if err != nil {
		return err
	}
	if parseSummary {
		observability.NewPrinter(cmd.OutOrStdout()).PrintProjects(projects)
		if parseOutFile == "" {
			return nil
		}
	}
	return writeJSON(cmd.OutOrStdout(), parseOutFile, struct {
		Projects []types.ParsedProject `json:"projects"`
	}{projects})
}
