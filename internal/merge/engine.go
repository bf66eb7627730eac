// Package merge reconciles projects extracted from an uploaded résumé with the
// projects a user already has, deciding for each whether to add, update or skip.
package merge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/decoding"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultCeiling bounds how long the agent tier may take
const DefaultCeiling = 90 * time.Second

// ProjectStore reads and writes a user's stored projects.
type ProjectStore interface {
	ListProjects(ctx context.Context, userID uuid.UUID) ([]types.ProjectEntry, error)
	CreateProject(ctx context.Context, userID uuid.UUID, p types.ParsedProject) (string, error)
	UpdateProject(ctx context.Context, userID uuid.UUID, projectID string, patch types.ProjectPatch) error
}

// Options tunes the agent tier
type Options struct {
	PollInterval time.Duration
	Ceiling      time.Duration
	EngineID     string
}

// Engine reconciles projects. A nil agent client means every request uses
// the fallback tier.
type Engine struct {
	agent  agent.Client
	store  ProjectStore
	logger logrus.FieldLogger
	opts   Options
}

// NewEngine creates an Engine.
func NewEngine(client agent.Client, store ProjectStore, logger logrus.FieldLogger, opts Options) *Engine {
	if opts.Ceiling <= 0 {
		opts.Ceiling = DefaultCeiling
	}
	return &Engine{agent: client, store: store, logger: logger, opts: opts}
}

// Outcome is the result of a full merge request
type Outcome struct {
	Result  types.MergeResult `json:"result"`
	Applied types.ApplyCounts `json:"applied"`
}

// Merge loads the user's projects, reconciles incoming against them and
// applies the result when autoApply is set.
func (e *Engine) Merge(ctx context.Context, userID uuid.UUID, incoming []types.ParsedProject, autoApply bool) (*Outcome, error) {
	existing, err := e.store.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing projects: %w", err)
	}

	result := e.Reconcile(ctx, incoming, existing)
	counts, err := e.Apply(ctx, userID, result, autoApply)
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: result, Applied: counts}, nil
}

// Reconcile decides add, update or skip for every incoming project. It never
// fails: when the agent tier is unavailable or unusable the fallback decides.
func (e *Engine) Reconcile(ctx context.Context, incoming []types.ParsedProject, existing []types.ProjectEntry) types.MergeResult {
	log := e.logger.WithFields(logrus.Fields{"incoming": len(incoming), "existing": len(existing)})

	outcome := e.agentTier(ctx, incoming, existing)
	if outcome.reason != "" {
		log.WithField("tier", types.MergeTierFallback).Infof("Reconciling without agent: %s", outcome.reason)
	}

	decisions := fallbackDecisions(incoming, existing, outcome.decided)

	result := types.MergeResult{Tier: tierFor(len(outcome.decided), len(incoming))}
	for i := range incoming {
		result.Append(decisions[i])
	}
	result = normalizeResult(result)

	log.WithFields(logrus.Fields{
		"tier":   result.Tier,
		"add":    len(result.Add),
		"update": len(result.Update),
		"skip":   len(result.Skip),
	}).Info("Projects reconciled")
	return result
}

// Apply writes adds and updates to the store. With autoApply false nothing is
// written and the counts describe what would happen.
func (e *Engine) Apply(ctx context.Context, userID uuid.UUID, result types.MergeResult, autoApply bool) (types.ApplyCounts, error) {
	planned := types.ApplyCounts{Added: len(result.Add), Updated: len(result.Update), Skipped: len(result.Skip)}
	if !autoApply {
		return planned, nil
	}

	applied := types.ApplyCounts{Skipped: len(result.Skip)}
	for _, d := range result.Add {
		if _, err := e.store.CreateProject(ctx, userID, d.Project); err != nil {
			return applied, fmt.Errorf("failed to add project %q: %w", d.Project.Name, err)
		}
		applied.Added++
	}
	for _, d := range result.Update {
		if d.Patch == nil || d.Patch.IsEmpty() {
			applied.Skipped++
			continue
		}
		if err := e.store.UpdateProject(ctx, userID, d.ExistingID, *d.Patch); err != nil {
			return applied, fmt.Errorf("failed to update project %s: %w", d.ExistingID, err)
		}
		applied.Updated++
	}
	return applied, nil
}

func tierFor(agentDecided, total int) types.MergeTier {
	switch {
	case agentDecided == 0:
		return types.MergeTierFallback
	case agentDecided == total:
		return types.MergeTierAgent
	default:
		return types.MergeTierMixed
	}
}

// tierOutcome is what the agent tier managed to decide. reason is set when the
// tier was skipped or its answer was unusable.
type tierOutcome struct {
	decided map[int]types.MergeDecision
	reason  string
}

func skipped(reason string) tierOutcome {
	return tierOutcome{reason: reason}
}

// wireDecision is one decision as the agent reports it
type wireDecision struct {
	NewIndex   int    `json:"newIndex"`
	NewName    string `json:"newName"`
	Action     string `json:"action"`
	ExistingID string `json:"existingId"`
	Reason     string `json:"reason"`
}

type indexedProject struct {
	Index int `json:"index"`
	types.ParsedProject
}

func (e *Engine) agentTier(ctx context.Context, incoming []types.ParsedProject, existing []types.ProjectEntry) tierOutcome {
	switch {
	case e.agent == nil:
		return skipped("agent not configured")
	case len(incoming) == 0:
		return skipped("nothing to reconcile")
	case len(existing) == 0:
		return skipped("no existing projects")
	}

	req, err := e.buildRequest(incoming, existing)
	if err != nil {
		return skipped(err.Error())
	}

	res, err := agent.Await(ctx, e.agent, req, agent.Options{Interval: e.opts.PollInterval, Ceiling: e.opts.Ceiling})
	if err != nil {
		return skipped(fmt.Sprintf("agent run failed: %v", err))
	}
	raw, err := agent.Answer(res)
	if err != nil {
		return skipped(err.Error())
	}

	answer, ok := decoding.ParseRaw(raw).Object()
	if !ok {
		return skipped("agent answer is not a JSON object")
	}
	doc, err := json.Marshal(answer)
	if err != nil {
		return skipped(fmt.Sprintf("agent answer could not be re-encoded: %v", err))
	}
	if err := schemas.Validate(schemas.MergeDecisions, doc); err != nil {
		return skipped(err.Error())
	}

	var parsed struct {
		Decisions []wireDecision `json:"decisions"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return skipped(fmt.Sprintf("agent decisions could not be parsed: %v", err))
	}

	return tierOutcome{decided: crossReference(parsed.Decisions, incoming, existing, e.logger)}
}

func (e *Engine) buildRequest(incoming []types.ParsedProject, existing []types.ProjectEntry) (agent.RunRequest, error) {
	indexed := make([]indexedProject, len(incoming))
	for i, p := range incoming {
		indexed[i] = indexedProject{Index: i, ParsedProject: p}
	}
	newJSON, err := json.MarshalIndent(indexed, "", "  ")
	if err != nil {
		return agent.RunRequest{}, fmt.Errorf("failed to marshal new projects: %w", err)
	}
	existingJSON, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return agent.RunRequest{}, fmt.Errorf("failed to marshal existing projects: %w", err)
	}

	instructions, err := prompts.Render(prompts.MergeFile, "reconcile-projects", map[string]string{
		"NewProjects":      string(newJSON),
		"ExistingProjects": string(existingJSON),
	})
	if err != nil {
		return agent.RunRequest{}, err
	}

	return agent.RunRequest{
		EngineID:     e.opts.EngineID,
		Name:         "merge_decisions",
		Instructions: instructions,
		AnswerFormat: schemas.MustRaw(schemas.MergeDecisions),
	}, nil
}

// crossReference keeps the agent decisions that point at real projects. The
// first decision for an index wins. Patches are rebuilt from the merge rules,
// and an update that would change nothing becomes a skip.
func crossReference(decisions []wireDecision, incoming []types.ParsedProject, existing []types.ProjectEntry, log logrus.FieldLogger) map[int]types.MergeDecision {
	byID := make(map[string]types.ProjectEntry, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}

	out := make(map[int]types.MergeDecision)
	for _, d := range decisions {
		idx, ok := resolveIndex(d, incoming)
		if !ok {
			log.WithField("new_name", d.NewName).Debug("Discarding decision for unknown project")
			continue
		}
		if _, dup := out[idx]; dup {
			continue
		}
		p := incoming[idx]
		reason := strings.TrimSpace(d.Reason)

		switch types.DecisionKind(d.Action) {
		case types.DecisionAdd:
			out[idx] = types.MergeDecision{Kind: types.DecisionAdd, Project: p, Reason: orDefault(reason, "no matching project")}
		case types.DecisionSkip, types.DecisionUpdate:
			ex, known := byID[d.ExistingID]
			if !known {
				log.WithField("existing_id", d.ExistingID).Debug("Discarding decision for unknown existing project")
				continue
			}
			patch := BuildPatch(p, ex)
			if d.Action == string(types.DecisionSkip) || patch.IsEmpty() {
				out[idx] = types.MergeDecision{Kind: types.DecisionSkip, Project: p, ExistingID: ex.ID, Reason: orDefault(reason, "already stored")}
				continue
			}
			out[idx] = types.MergeDecision{Kind: types.DecisionUpdate, Project: p, ExistingID: ex.ID, Patch: &patch, Reason: orDefault(reason, "adds new details")}
		}
	}
	return out
}

// resolveIndex finds the incoming project a decision refers to. The index must
// be in range and, when a name is given, agree with it; otherwise the name alone
// is used.
func resolveIndex(d wireDecision, incoming []types.ParsedProject) (int, bool) {
	name := normalizeName(d.NewName)
	if d.NewIndex >= 0 && d.NewIndex < len(incoming) {
		if name == "" || normalizeName(incoming[d.NewIndex].Name) == name {
			return d.NewIndex, true
		}
	}
	if name == "" {
		return 0, false
	}
	for i, p := range incoming {
		if normalizeName(p.Name) == name {
			return i, true
		}
	}
	return 0, false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
