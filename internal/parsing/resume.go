// Package parsing extracts structured projects from plain résumé text with an agent run.
package parsing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/decoding"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultCeiling bounds a parse run
const DefaultCeiling = 120 * time.Second

// Options tunes the parser's agent runs
type Options struct {
	PollInterval time.Duration
	Ceiling      time.Duration
	EngineID     string
}

// Parser turns résumé text into projects
type Parser struct {
	agent  agent.Client
	logger logrus.FieldLogger
	opts   Options
}

// NewParser creates a Parser.
func NewParser(client agent.Client, logger logrus.FieldLogger, opts Options) *Parser {
	if opts.Ceiling <= 0 {
		opts.Ceiling = DefaultCeiling
	}
	return &Parser{agent: client, logger: logger, opts: opts}
}

// Parse extracts the projects listed in a résumé. Entries without a name are
// dropped; ErrNoProjects is returned when nothing usable remains.
func (p *Parser) Parse(ctx context.Context, resumeText string) ([]types.ParsedProject, error) {
	text := ingestion.CleanText(resumeText)
	if text == "" {
		return nil, ErrEmptyResume
	}

	instructions, err := prompts.Render(prompts.ParsingFile, "parse-resume", map[string]string{"ResumeText": text})
	if err != nil {
		return nil, fmt.Errorf("failed to render parse prompt: %w", err)
	}

	res, err := agent.Await(ctx, p.agent, agent.RunRequest{
		EngineID:     p.opts.EngineID,
		Name:         "parsed_resume",
		Instructions: instructions,
		AnswerFormat: schemas.MustRaw(schemas.ParsedResume),
	}, agent.Options{Interval: p.opts.PollInterval, Ceiling: p.opts.Ceiling})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &AgentError{Message: "résumé parse run failed", Cause: err}
	}

	raw, err := agent.Answer(res)
	if err != nil {
		return nil, &AgentError{Message: "résumé parse run returned no answer", Cause: err}
	}

	log := p.logger.WithField("run_id", res.RunID)
	if err := schemas.Validate(schemas.ParsedResume, raw); err != nil {
		var verr *schemas.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		log.WithError(err).Warn("Parsed résumé does not match the declared format; decoding leniently")
	}

	projects := DecodeAnswer(decoding.ParseRaw(raw))
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}
	log.WithField("projects", len(projects)).Info("Résumé parsed")
	return projects, nil
}

// DecodeAnswer reads the projects from a parse answer. The projects field may
// be an array or a JSON-encoded array; a bare array answer is accepted too.
func DecodeAnswer(raw decoding.RawAnswer) []types.ParsedProject {
	var source any
	if obj, ok := raw.Object(); ok {
		source = obj["projects"]
	} else if text, ok := raw.Text(); ok {
		source = text
	}

	out := []types.ParsedProject{}
	for _, entry := range decoding.DecodeProjects(source) {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}
		out = append(out, toParsed(entry))
	}
	return out
}
