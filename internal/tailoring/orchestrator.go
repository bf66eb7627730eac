package tailoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/decoding"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/profile"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Phase names, in the order a run moves through them
const (
	PhaseLoadingProfile = "loading_profile"
	PhaseResearching    = "researching"
	PhaseTailoring      = "tailoring"
	PhaseValidating     = "validating"
	PhaseComplete       = "complete"
)

// Progress reported on entering each phase
const (
	progressLoadingProfile = 10
	progressResearching    = 25
	progressTailoring      = 40
	progressThoughtStep    = 5
	progressThoughtCeiling = 85
	progressValidating     = 90
	progressComplete       = 100
)

// softFailureMarkers indicate the agent could not read the posting source.
var softFailureMarkers = []string{"blocked", "not found", "unable to access", "access denied", "captcha"}

// Authenticator resolves a bearer credential to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// ProfileLoader builds a user's profile snapshot.
type ProfileLoader interface {
	Aggregate(ctx context.Context, userID uuid.UUID) (*types.ProfileSnapshot, error)
}

// Emitter receives the events of one run. Emit returns false once the
// consumer has gone away.
type Emitter interface {
	Emit(ev types.ProgressEvent) bool
	Close()
}

// Options tunes the orchestrator
type Options struct {
	PollInterval time.Duration
	Ceiling      time.Duration
	EngineID     string
	Tools        []agent.ToolRef
	DevMode      bool // attach diagnostic details to error events
}

// Orchestrator runs tailoring requests
type Orchestrator struct {
	profiles ProfileLoader
	agent    agent.Client
	auth     Authenticator
	logger   logrus.FieldLogger
	opts     Options
}

// New creates an Orchestrator. profiles may be nil when only inline résumé
// data will be tailored.
func New(profiles ProfileLoader, client agent.Client, auth Authenticator, logger logrus.FieldLogger, opts Options) *Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = agent.DefaultInterval
	}
	if opts.Ceiling <= 0 {
		opts.Ceiling = agent.DefaultCeiling
	}
	return &Orchestrator{
		profiles: profiles,
		agent:    client,
		auth:     auth,
		logger:   logger,
		opts:     opts,
	}
}

// run is the state of a single request
type run struct {
	out      Emitter
	log      logrus.FieldLogger
	devMode  bool
	phase    string
	progress int
	done     bool
}

func (r *run) emit(ev types.ProgressEvent) bool {
	if r.done {
		return false
	}
	if ev.Terminal() {
		r.done = true
	}
	return r.out.Emit(ev)
}

// enter moves to the next phase; progress never goes backwards.
func (r *run) enter(phase string, progress int) bool {
	if progress < r.progress {
		progress = r.progress
	}
	r.phase = phase
	r.progress = progress
	r.log.WithField("phase", phase).Debug("Entering phase")
	return r.emit(types.PhaseEvent(phase, progress))
}

// thought forwards agent narration, advancing progress up to the ceiling.
func (r *run) thought(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if next := r.progress + progressThoughtStep; next <= progressThoughtCeiling {
		r.progress = next
	} else if r.progress < progressThoughtCeiling {
		r.progress = progressThoughtCeiling
	}
	r.emit(types.ThoughtEvent(text, r.phase, r.progress))
}

func (r *run) fail(message string, err error) {
	entry := r.log.WithField("phase", r.phase)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(message)

	details := ""
	if r.devMode && err != nil {
		details = err.Error()
	}
	r.emit(types.ErrorEvent(message, details))
}

// Run executes one tailoring request, emitting progress to out, and always
// closes out before returning. Exactly one terminal event is emitted unless
// the consumer detaches first.
func (o *Orchestrator) Run(ctx context.Context, token string, req *TailorRequest, out Emitter) {
	defer out.Close()

	r := &run{out: out, log: o.logger, devMode: o.opts.DevMode}
	if err := Validate(req); err != nil {
		r.fail(err.Error(), err)
		return
	}

	userID, err := o.auth.Authenticate(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			err = fmt.Errorf("%s: %w", unauthenticatedDetails, err)
		}
		r.fail(MsgUnauthenticated, err)
		return
	}
	r.log = o.logger.WithField("user_id", userID.String())

	if !r.enter(PhaseLoadingProfile, progressLoadingProfile) {
		return
	}
	snapshot, err := o.loadProfile(ctx, userID, req)
	if err != nil {
		r.fail(o.profileMessage(ctx, err), err)
		return
	}

	if !r.enter(PhaseResearching, progressResearching) {
		return
	}
	posting := ingestion.NormalizePosting(req.JobDescription.FullText)
	insights := ComputeInsights(req.JobDescription, posting.Text, snapshot)
	r.log.WithFields(logrus.Fields{
		"posting_hash":     posting.Hash,
		"keywords":         len(insights.Keywords),
		"matched_skills":   len(insights.MatchedSkills),
		"missing_keywords": len(insights.MissingKeywords),
	}).Info("Job posting analyzed")

	runReq, err := o.buildRunRequest(req.JobDescription, posting.Text, insights, snapshot)
	if err != nil {
		r.fail(MsgInternal, err)
		return
	}

	if !r.enter(PhaseTailoring, progressTailoring) {
		return
	}
	res, err := agent.Await(ctx, o.agent, runReq, agent.Options{
		Interval:   o.opts.PollInterval,
		Ceiling:    o.opts.Ceiling,
		OnProgress: r.thought,
	})
	if err != nil {
		if ctx.Err() != nil {
			r.fail(MsgCancelled, err)
			return
		}
		r.fail(MsgAgentFailed, err)
		return
	}
	r.log = r.log.WithField("run_id", res.RunID)

	raw, err := agent.Answer(res)
	if err != nil {
		var failure *agent.Failure
		if errors.As(err, &failure) && failure.Kind() == agent.ErrorKindTimeout {
			r.fail(MsgAgentTimeout, err)
			return
		}
		r.fail(MsgAgentFailed, err)
		return
	}

	if !r.enter(PhaseValidating, progressValidating) {
		return
	}
	if err := schemas.Validate(schemas.TailoredAnswer, raw); err != nil {
		r.log.WithError(err).Warn("Agent answer does not match the declared format; decoding leniently")
	}
	result := decoding.DecodeBytes(raw)
	if flagSoftFailure(&result) {
		r.log.Info("Agent reported trouble reading the posting; warning attached")
	}

	if !r.enter(PhaseComplete, progressComplete) {
		return
	}
	r.emit(types.CompleteEvent(&result, snapshot))
	r.log.WithField("match_score", result.MatchScore).Info("Tailoring complete")
}

// loadProfile returns the snapshot to tailor, from storage or from the request.
func (o *Orchestrator) loadProfile(ctx context.Context, userID uuid.UUID, req *TailorRequest) (*types.ProfileSnapshot, error) {
	var snapshot *types.ProfileSnapshot
	if req.UseProfileData {
		if o.profiles == nil {
			return nil, fmt.Errorf("profile storage is not configured")
		}
		s, err := o.profiles.Aggregate(ctx, userID)
		if err != nil {
			return nil, err
		}
		snapshot = s
	} else {
		s := *req.ResumeData
		s.Skills = s.Skills.Normalize()
		snapshot = &s
	}

	if err := profile.CheckTailorable(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (o *Orchestrator) profileMessage(ctx context.Context, err error) string {
	var notFound *profile.NotFoundError
	switch {
	case errors.As(err, &notFound), errors.Is(err, profile.ErrInsufficientProfileData):
		return MsgNoProfile
	case ctx.Err() != nil:
		return MsgCancelled
	default:
		return MsgInternal
	}
}

func (o *Orchestrator) buildRunRequest(job *types.JobDescription, postingText string, insights JobInsights, snapshot *types.ProfileSnapshot) (agent.RunRequest, error) {
	profileJSON, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return agent.RunRequest{}, fmt.Errorf("failed to marshal profile: %w", err)
	}

	instructions, err := prompts.Render(prompts.TailoringFile, "tailor-resume", map[string]string{
		"JobTitle":        job.Title,
		"Company":         job.Company,
		"JobText":         postingText,
		"Requirements":    bulletList(append(append([]string{}, job.Requirements...), job.Responsibilities...)),
		"Keywords":        commaList(insights.Keywords),
		"MatchedSkills":   commaList(insights.MatchedSkills),
		"MissingKeywords": commaList(insights.MissingKeywords),
		"Profile":         string(profileJSON),
	})
	if err != nil {
		return agent.RunRequest{}, fmt.Errorf("failed to render tailoring prompt: %w", err)
	}

	return agent.RunRequest{
		EngineID:     o.opts.EngineID,
		Name:         "tailored_resume",
		Instructions: instructions,
		Tools:        o.opts.Tools,
		AnswerFormat: schemas.MustRaw(schemas.TailoredAnswer),
	}, nil
}

// flagSoftFailure appends the posting-unavailable warning when the summary
// reads like the agent could not access the posting. It never fails a run.
func flagSoftFailure(result *types.TailoredResume) bool {
	summary := strings.ToLower(result.ProfessionalSummary)
	hit := false
	for _, marker := range softFailureMarkers {
		if strings.Contains(summary, marker) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}

	warning := prompts.MustGet(prompts.TailoringFile, "posting-unavailable-warning")
	for _, w := range result.Summary.Warnings {
		if w == warning {
			return true
		}
	}
	result.Summary.Warnings = append(result.Summary.Warnings, warning)
	return true
}

func bulletList(items []string) string {
	var lines []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			lines = append(lines, "- "+item)
		}
	}
	if len(lines) == 0 {
		return "(none listed)"
	}
	return strings.Join(lines, "\n")
}

func commaList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
