// Package agent defines the contract for asynchronous, schema-constrained agent
// runs and the await/poll logic shared by every backend.
package agent

import (
	"context"
	"encoding/json"
	"errors"
)

// Status is the lifecycle state of a run
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the run will not change state again.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ToolRef names a capability the agent may use during the run (e.g. web search).
type ToolRef struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// RunRequest is what a caller submits to an agent backend.
type RunRequest struct {
	EngineID     string          `json:"engineId,omitempty"`
	Name         string          `json:"name,omitempty"` // short label for the answer format
	Instructions string          `json:"instructions"`
	Tools        []ToolRef       `json:"tools,omitempty"`
	AnswerFormat json.RawMessage `json:"answerFormat,omitempty"` // JSON Schema of the expected answer
}

// RunResult is the state of a run. Answer is opaque here; only the decoding
// package interprets it.
type RunResult struct {
	RunID    string          `json:"runId"`
	Status   Status          `json:"status"`
	Answer   json.RawMessage `json:"answer,omitempty"`
	Error    *RunError       `json:"error,omitempty"`
	Progress []string        `json:"progress,omitempty"` // cumulative narration from the backend
}

// Submission is returned by Submit: either a finished Result (backends that
// run inline) or a RunID to poll.
type Submission struct {
	RunID  string
	Result *RunResult
}

// ErrPermanent marks Submit or Get errors that retrying cannot fix. Backends
// wrap it (or match it from their error's Is method) so Await stops at once.
var ErrPermanent = errors.New("permanent agent error")

// IsPermanent reports whether err will not go away on retry.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

// Client is an agent backend. Errors that retrying cannot fix should satisfy
// IsPermanent.
type Client interface {
	Submit(ctx context.Context, req RunRequest) (*Submission, error)
	Get(ctx context.Context, runID string) (*RunResult, error)
}

// Answer returns the answer of a succeeded run, or a *Failure explaining why
// there is none.
func Answer(res *RunResult) (json.RawMessage, error) {
	if res == nil {
		return nil, &Failure{Status: StatusFailed, Err: &RunError{Kind: ErrorKindUnknown, Message: "no run result"}}
	}
	if res.Status != StatusSucceeded {
		return nil, &Failure{RunID: res.RunID, Status: res.Status, Err: res.Error}
	}
	if len(res.Answer) == 0 || string(res.Answer) == "null" {
		return nil, &Failure{RunID: res.RunID, Status: res.Status, Err: &RunError{Kind: ErrorKindEngine, Message: "run succeeded without an answer"}}
	}
	return res.Answer, nil
}
