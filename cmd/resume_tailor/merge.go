package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/observability"
)

var (
	mergeUserID       string
	mergeInFile       string
	mergeOutFile      string
	mergeApply        bool
	mergeFallbackOnly bool
	mergeSummary      bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Reconcile parsed projects against a user's stored projects",
	Long: "Decide add, update or skip for every project in --in against the projects already " +
		"stored for --user. Nothing is written unless --apply is set.",
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeUserID, "user", "", "User ID whose projects are reconciled (required)")
	mergeCmd.Flags().StringVarP(&mergeInFile, "in", "i", "", "Path to the parsed projects JSON (required)")
	mergeCmd.Flags().StringVarP(&mergeOutFile, "out", "o", "", "Write the merge outcome to this file instead of stdout")
	mergeCmd.Flags().BoolVar(&mergeApply, "apply", false, "Write adds and updates to the database")
	mergeCmd.Flags().BoolVar(&mergeSummary, "summary", false, "Print a readable summary instead of JSON (JSON still goes to --out)")
	mergeCmd.Flags().BoolVar(&mergeFallbackOnly, "fallback-only", false, "Skip the agent and use name and URL matching only")

	_ = mergeCmd.MarkFlagRequired("user")
	_ = mergeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(mergeUserID)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}
	projects, err := readProjects(mergeInFile)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return fmt.Errorf("%s contains no projects", mergeInFile)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	var client agent.Client
	if !mergeFallbackOnly {
		backends, err := buildAgents(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer backends.Close()
		client = backends.merge
	}

	outcome, err := newMergeEngine(client, database, cfg, logger).Merge(ctx, userID, projects, mergeApply)
	if err != nil {
		return err
	}
	if mergeSummary {
		observability.NewPrinter(cmd.OutOrStdout()).PrintMergeOutcome(outcome, mergeApply)
		if mergeOutFile == "" {
			return nil
		}
	}
	return writeJSON(cmd.OutOrStdout(), mergeOutFile, outcome)
}
