package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorPayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantNil   bool
		wantKind  ErrorKind
		wantMsg   string
		wantField string
	}{
		{name: "empty", payload: ``, wantNil: true},
		{name: "null", payload: `null`, wantNil: true},
		{name: "plain string", payload: `"request timed out"`, wantKind: ErrorKindTimeout, wantMsg: "request timed out"},
		{name: "already typed", payload: `{"kind":"rate_limited","message":"slow down","retryAfter":30}`, wantKind: ErrorKindRateLimited, wantMsg: "slow down"},
		{name: "validation", payload: `{"type":"invalid_request","field":"answerFormat","message":"schema too deep"}`, wantKind: ErrorKindValidation, wantMsg: "schema too deep", wantField: "answerFormat"},
		{name: "rate limit", payload: `{"message":"quota","retryAfter":10}`, wantKind: ErrorKindRateLimited, wantMsg: "quota"},
		{name: "envelope", payload: `{"error":{"type":"engine_error","message":"model crashed"}}`, wantKind: ErrorKindEngine, wantMsg: "model crashed"},
		{name: "numeric code", payload: `{"code":503,"message":"unavailable"}`, wantKind: ErrorKindEngine, wantMsg: "unavailable"},
		{name: "string code", payload: `{"code":"429","message":"too many"}`, wantKind: ErrorKindRateLimited, wantMsg: "too many"},
		{name: "unrecognized object", payload: `{"foo":"bar"}`, wantKind: ErrorKindUnknown},
		{name: "not json", payload: `<html>oops</html>`, wantKind: ErrorKindUnknown, wantMsg: "<html>oops</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseErrorPayload(json.RawMessage(tt.payload))
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, got.Message)
			}
			assert.Equal(t, tt.wantField, got.Field)
		})
	}
}

func TestFailure_Error(t *testing.T) {
	f := &Failure{RunID: "r1", Status: StatusFailed, Err: &RunError{Kind: ErrorKindValidation, Message: "bad", Field: "x"}}
	assert.Contains(t, f.Error(), "r1")
	assert.Contains(t, f.Error(), "field x")
	assert.Equal(t, ErrorKindValidation, f.Kind())

	untyped := &Failure{RunID: "r2", Status: StatusFailed}
	assert.Equal(t, ErrorKindUnknown, untyped.Kind())
	assert.Contains(t, untyped.Error(), "status failed")
}
