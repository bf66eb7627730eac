package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/auth"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/tailoring"
)

// Messages for JSON error bodies. Tailoring failures travel as stream events
// and carry their own text.
const (
	msgAgentFailed = "The agent could not complete this request. Please try again."
	msgInternal    = "Something went wrong. Please try again."
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates the requested resource does not exist for the caller
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		tailorValidErr *tailoring.ValidationError
		notFoundErr    *ErrNotFound
		emailErr       *auth.ErrEmailAlreadyExists
		credentialsErr *auth.ErrInvalidCredentials
		agentFailure   *agent.Failure
		parseErr       *parsing.AgentError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &tailorValidErr), errors.Is(err, parsing.ErrEmptyResume):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &emailErr):
		return http.StatusConflict
	case errors.As(err, &credentialsErr), errors.Is(err, tailoring.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &agentFailure), errors.As(err, &parseErr), errors.Is(err, parsing.ErrNoProjects):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the text clients see for err. Internal errors never leak
// their cause.
func publicMessage(err error, status int) string {
	switch {
	case status == http.StatusUnprocessableEntity && errors.Is(err, parsing.ErrNoProjects):
		return "No projects were found in the résumé."
	case status == http.StatusUnprocessableEntity:
		return msgAgentFailed
	case status == http.StatusUnauthorized && errors.Is(err, tailoring.ErrUnauthenticated):
		return tailoring.MsgUnauthenticated
	case status >= http.StatusInternalServerError:
		return msgInternal
	default:
		return err.Error()
	}
}
