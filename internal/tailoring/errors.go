package tailoring

import (
	"errors"
	"fmt"
)

// User-facing messages carried by error events. Diagnostic detail goes into
// the event's Details field, and only in dev mode.
const (
	MsgUnauthenticated     = "Authentication required. Please sign in and try again."
	MsgNoProfile           = "No profile data found. Add experience or projects to your profile before tailoring."
	MsgAgentFailed         = "The tailoring agent could not complete this request. Please try again."
	MsgAgentTimeout        = "Tailoring took too long and was stopped. Please try again."
	MsgInternal            = "Something went wrong while tailoring your résumé."
	MsgCancelled           = "The tailoring request was cancelled."
	unauthenticatedDetails = "bearer credential rejected"
)

// ErrUnauthenticated is returned by an Authenticator that rejects a credential.
var ErrUnauthenticated = errors.New("unauthenticated")

// ValidationError indicates a malformed tailoring request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}
