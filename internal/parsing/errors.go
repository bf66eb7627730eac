package parsing

import (
	"errors"
	"fmt"
)

// ErrNoProjects is returned when the agent answered but found no projects.
var ErrNoProjects = errors.New("no projects found in résumé")

// ErrEmptyResume is returned for blank résumé text.
var ErrEmptyResume = errors.New("résumé text is empty")

// AgentError represents a failed or unusable agent run
type AgentError struct {
	Message string
	Cause   error
}

func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("agent call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("agent call failed: %s", e.Message)
}

func (e *AgentError) Unwrap() error {
	return e.Cause
}
