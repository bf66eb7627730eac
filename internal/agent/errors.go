package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind classifies why a run failed
type ErrorKind string

const (
	ErrorKindValidation  ErrorKind = "validation"   // the request or answer format was rejected
	ErrorKindRateLimited ErrorKind = "rate_limited" // backend quota exhausted
	ErrorKindTimeout     ErrorKind = "timeout"      // ceiling exceeded while waiting
	ErrorKindEngine      ErrorKind = "engine"       // the engine itself failed
	ErrorKindUnknown     ErrorKind = "unknown"
)

// RunError is a typed agent failure
type RunError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	Field      string    `json:"field,omitempty"`      // offending field for validation errors
	RetryAfter int       `json:"retryAfter,omitempty"` // seconds, for rate limits
}

func (e *RunError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Failure is returned when a run did not produce a usable answer.
type Failure struct {
	RunID  string
	Status Status
	Err    *RunError
	Cause  error // transport or context error, if any
}

func (f *Failure) Error() string {
	switch {
	case f.Err != nil && f.Cause != nil:
		return fmt.Sprintf("agent run %s failed: %s: %v", f.RunID, f.Err, f.Cause)
	case f.Err != nil:
		return fmt.Sprintf("agent run %s failed: %s", f.RunID, f.Err)
	case f.Cause != nil:
		return fmt.Sprintf("agent run %s failed: %v", f.RunID, f.Cause)
	default:
		return fmt.Sprintf("agent run %s ended with status %s", f.RunID, f.Status)
	}
}

func (f *Failure) Unwrap() error { return f.Cause }

// Kind returns the failure classification, ErrorKindUnknown when untyped.
func (f *Failure) Kind() ErrorKind {
	if f.Err == nil {
		return ErrorKindUnknown
	}
	return f.Err.Kind
}

// Wire shapes backends use for errors, tried in order by ParseErrorPayload.
type (
	envelopeShape struct {
		Error json.RawMessage `json:"error"`
	}
	validationShape struct {
		Type    string `json:"type"`
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	rateLimitShape struct {
		Type       string `json:"type"`
		Message    string `json:"message"`
		RetryAfter int    `json:"retryAfter"`
	}
	codeShape struct {
		Type    string `json:"type"`
		Code    any    `json:"code"`
		Message string `json:"message"`
	}
)

// ParseErrorPayload decodes a backend error payload into a RunError. It never
// fails: unrecognized payloads become ErrorKindUnknown with the raw text.
func ParseErrorPayload(raw json.RawMessage) *RunError {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil
	}

	// Plain string
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &RunError{Kind: kindFromText(s), Message: s}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return &RunError{Kind: ErrorKindUnknown, Message: text}
	}

	// Already typed
	if _, ok := fields["kind"]; ok {
		var typed RunError
		if err := json.Unmarshal(raw, &typed); err == nil && typed.Kind != "" {
			return &typed
		}
	}

	// {"error": {...}} or {"error": "..."}
	if _, ok := fields["error"]; ok {
		var env envelopeShape
		if err := json.Unmarshal(raw, &env); err == nil {
			if parsed := ParseErrorPayload(env.Error); parsed != nil {
				return parsed
			}
		}
	}

	// Validation: carries a field
	if _, ok := fields["field"]; ok {
		var v validationShape
		if err := json.Unmarshal(raw, &v); err == nil {
			return &RunError{Kind: ErrorKindValidation, Message: v.Message, Field: v.Field}
		}
	}

	// Rate limit: carries retryAfter
	if _, ok := fields["retryAfter"]; ok {
		var r rateLimitShape
		if err := json.Unmarshal(raw, &r); err == nil {
			return &RunError{Kind: ErrorKindRateLimited, Message: r.Message, RetryAfter: r.RetryAfter}
		}
	}

	// Generic {type, code, message}
	var c codeShape
	if err := json.Unmarshal(raw, &c); err == nil && (c.Type != "" || c.Code != nil || c.Message != "") {
		kind := kindFromText(c.Type)
		if kind == ErrorKindUnknown {
			kind = kindFromCode(c.Code)
		}
		if kind == ErrorKindUnknown && c.Code != nil {
			kind = ErrorKindEngine
		}
		msg := c.Message
		if msg == "" {
			msg = c.Type
		}
		return &RunError{Kind: kind, Message: msg}
	}

	return &RunError{Kind: ErrorKindUnknown, Message: text}
}

func kindFromText(s string) ErrorKind {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "validation"), strings.Contains(lower, "invalid"):
		return ErrorKindValidation
	case strings.Contains(lower, "rate"), strings.Contains(lower, "quota"):
		return ErrorKindRateLimited
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "timed out"), strings.Contains(lower, "deadline"):
		return ErrorKindTimeout
	case strings.Contains(lower, "engine"), strings.Contains(lower, "internal"):
		return ErrorKindEngine
	default:
		return ErrorKindUnknown
	}
}

func kindFromCode(code any) ErrorKind {
	var n int
	switch v := code.(type) {
	case float64:
		n = int(v)
	case string:
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return kindFromText(v)
		}
	default:
		return ErrorKindUnknown
	}
	switch {
	case n == 400 || n == 422:
		return ErrorKindValidation
	case n == 429:
		return ErrorKindRateLimited
	case n == 408 || n == 504:
		return ErrorKindTimeout
	case n >= 500:
		return ErrorKindEngine
	default:
		return ErrorKindUnknown
	}
}
