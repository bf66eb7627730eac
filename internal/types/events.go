package types

// EventType discriminates ProgressEvent variants
type EventType string

// Event types
const (
	EventPhase    EventType = "phase"
	EventThought  EventType = "thought"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// ProgressEvent is one frame of a tailoring stream.
// Which fields are set depends on Type; use the constructors below.
type ProgressEvent struct {
	Type           EventType        `json:"type"`
	Phase          string           `json:"phase,omitempty"`
	Progress       int              `json:"progress,omitempty"`
	Text           string           `json:"text,omitempty"`
	Result         *TailoredResume  `json:"result,omitempty"`
	OriginalResume *ProfileSnapshot `json:"originalResume,omitempty"`
	Message        string           `json:"message,omitempty"`
	Details        string           `json:"details,omitempty"`
}

// PhaseEvent reports a state transition.
func PhaseEvent(name string, progress int) ProgressEvent {
	return ProgressEvent{Type: EventPhase, Phase: name, Progress: progress}
}

// ThoughtEvent carries non-authoritative narration.
func ThoughtEvent(text, phase string, progress int) ProgressEvent {
	return ProgressEvent{Type: EventThought, Text: text, Phase: phase, Progress: progress}
}

// CompleteEvent carries the final result.
func CompleteEvent(result *TailoredResume, original *ProfileSnapshot) ProgressEvent {
	return ProgressEvent{Type: EventComplete, Progress: 100, Result: result, OriginalResume: original}
}

// ErrorEvent reports a terminal failure. Details is only filled in dev mode.
func ErrorEvent(message, details string) ProgressEvent {
	return ProgressEvent{Type: EventError, Message: message, Details: details}
}

// Terminal reports whether the event ends a stream.
func (e ProgressEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}
