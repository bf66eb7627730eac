package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// ErrNotPollable is returned by Get on backends that only run inline.
var ErrNotPollable = fmt.Errorf("%w: agent backend runs inline and cannot be polled", ErrPermanent)

const llmSystemPrompt = "You are a careful career assistant. Follow the instructions exactly and answer with a single JSON object. Never invent facts that are not present in the supplied data."

// LLMClient runs each request synchronously against an LLM provider and
// returns the finished result from Submit.
type LLMClient struct {
	llm  llm.Client
	tier llm.ModelTier
}

// NewLLMClient wraps an LLM provider as an inline agent backend.
func NewLLMClient(client llm.Client, tier llm.ModelTier) *LLMClient {
	return &LLMClient{llm: client, tier: tier}
}

// Submit runs the request to completion. Provider errors become a failed
// result, not an error, so callers see them the same way as remote failures.
func (c *LLMClient) Submit(ctx context.Context, req RunRequest) (*Submission, error) {
	runID := uuid.NewString()
	model := c.llm.GetModel(c.tier)
	progress := []string{fmt.Sprintf("Sending request to %s", model)}

	text, err := c.llm.GenerateJSON(ctx, llm.Request{
		System:     llmSystemPrompt,
		Prompt:     req.Instructions,
		Schema:     req.AnswerFormat,
		SchemaName: req.Name,
	}, c.tier)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &Submission{RunID: runID, Result: &RunResult{
			RunID:    runID,
			Status:   StatusFailed,
			Error:    &RunError{Kind: kindFromText(err.Error()), Message: err.Error()},
			Progress: progress,
		}}, nil
	}

	if !json.Valid([]byte(text)) {
		return &Submission{RunID: runID, Result: &RunResult{
			RunID:    runID,
			Status:   StatusFailed,
			Error:    &RunError{Kind: ErrorKindEngine, Message: "model answer is not valid JSON"},
			Progress: progress,
		}}, nil
	}

	progress = append(progress, "Received structured answer")
	return &Submission{RunID: runID, Result: &RunResult{
		RunID:    runID,
		Status:   StatusSucceeded,
		Answer:   json.RawMessage(text),
		Progress: progress,
	}}, nil
}

// Get always fails: results are returned from Submit.
func (c *LLMClient) Get(_ context.Context, runID string) (*RunResult, error) {
	return nil, fmt.Errorf("get run %s: %w", runID, ErrNotPollable)
}
