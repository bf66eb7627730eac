package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/profile"
	"github.com/jonathan/resume-tailor/internal/stream"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

var (
	tailorJobFile    string
	tailorResumeFile string
	tailorUserID     string
	tailorOutFile    string
	tailorJobURL     string
	tailorTitle      string
	tailorCompany    string
	tailorSummary    bool
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor a résumé to a job posting and print the event stream",
	Long: "Run one tailoring request locally. Progress is printed as SSE frames on stdout, " +
		"exactly as the /api/tailor/stream endpoint would send them. The résumé comes either " +
		"from a JSON profile snapshot (--resume) or from a stored profile (--user). The posting " +
		"comes from a job description JSON (--job) or is fetched from a job board (--job-url).",
	RunE: runTailor,
}

func init() {
	tailorCmd.Flags().StringVarP(&tailorJobFile, "job", "j", "", "Path to the job description JSON")
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "Fetch the posting from this URL instead of --job")
	tailorCmd.Flags().StringVar(&tailorTitle, "title", "", "Job title for --job-url (defaults to the page heading)")
	tailorCmd.Flags().StringVar(&tailorCompany, "company", "", "Company for --job-url (defaults to a name derived from the URL)")
	tailorCmd.Flags().StringVarP(&tailorResumeFile, "resume", "r", "", "Path to a profile snapshot JSON to tailor")
	tailorCmd.Flags().StringVar(&tailorUserID, "user", "", "Tailor the stored profile of this user ID (requires DATABASE_URL)")
	tailorCmd.Flags().StringVarP(&tailorOutFile, "out", "o", "", "Write the tailored résumé JSON to this file")

	tailorCmd.Flags().BoolVar(&tailorSummary, "summary", false, "Print a readable summary of the result to stderr")

	tailorCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	tailorCmd.MarkFlagsOneRequired("job", "job-url")
	tailorCmd.MarkFlagsMutuallyExclusive("resume", "user")
	tailorCmd.MarkFlagsOneRequired("resume", "user")

	rootCmd.AddCommand(tailorCmd)
}

// localIdentity authenticates every local run as one fixed user.
type localIdentity uuid.UUID

func (id localIdentity) Authenticate(context.Context, string) (uuid.UUID, error) {
	return uuid.UUID(id), nil
}

func runTailor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	job, err := loadJob(ctx, logger)
	if err != nil {
		return err
	}
	req := &tailoring.TailorRequest{JobDescription: &job}

	userID := uuid.New()
	var profiles tailoring.ProfileLoader
	if tailorUserID != "" {
		userID, err = uuid.Parse(tailorUserID)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		database, err := connectDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		profiles = profile.NewAggregator(database, logger)
		req.UseProfileData = true
	} else {
		snapshot, err := readJSONFile[types.ProfileSnapshot](tailorResumeFile)
		if err != nil {
			return err
		}
		req.ResumeData = &snapshot
	}

	backends, err := buildAgents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	orchestrator := tailoring.New(profiles, backends.tailor, localIdentity(userID), logger, tailoring.Options{
		PollInterval: cfg.Agent.PollInterval.Std(),
		Ceiling:      cfg.Agent.TailorTimeout.Std(),
		EngineID:     cfg.Agent.EngineID,
		Tools:        backends.tools,
		DevMode:      true,
	})

	final, err := streamRun(ctx, cmd.OutOrStdout(), func(out tailoring.Emitter) {
		orchestrator.Run(ctx, "local", req, out)
	})
	if err != nil {
		return err
	}
	if final.Type == types.EventError {
		return fmt.Errorf("tailoring failed: %s", final.Message)
	}
	if tailorSummary {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintTailored(final.Result)
	}
	if tailorOutFile != "" {
		return writeJSON(cmd.OutOrStdout(), tailorOutFile, final.Result)
	}
	return nil
}

func loadJob(ctx context.Context, logger logrus.FieldLogger) (types.JobDescription, error) {
	if tailorJobURL == "" {
		return readJSONFile[types.JobDescription](tailorJobFile)
	}
	posting, err := fetch.Posting(ctx, tailorJobURL, &fetch.Options{Logger: logger})
	if err != nil {
		return types.JobDescription{}, err
	}
	logger.WithFields(logrus.Fields{
		"url":      tailorJobURL,
		"platform": posting.Platform,
		"chars":    len(posting.Text),
	}).Info("Job posting fetched")
	return posting.JobDescription(tailorTitle, tailorCompany), nil
}

// streamRun drives run on a fresh stream, prints every event as an SSE frame
// and returns the terminal event.
func streamRun(ctx context.Context, w io.Writer, run func(out tailoring.Emitter)) (types.ProgressEvent, error) {
	events := stream.New()
	go run(events)

	var final *types.ProgressEvent
	err := events.Drain(ctx, func(ev types.ProgressEvent) error {
		if ev.Terminal() {
			final = &ev
		}
		return writeFrame(w, ev)
	})
	if err != nil {
		return types.ProgressEvent{}, err
	}
	if final == nil {
		return types.ProgressEvent{}, errors.New("stream ended without a terminal event")
	}
	return *final, nil
}

// writeFrame prints ev in SSE wire format.
func writeFrame(w io.Writer, ev types.ProgressEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
