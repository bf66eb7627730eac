package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressEvent_Terminal(t *testing.T) {
	assert.False(t, PhaseEvent("researching", 25).Terminal())
	assert.False(t, ThoughtEvent("Reading", "tailoring", 45).Terminal())
	assert.True(t, CompleteEvent(&TailoredResume{}, nil).Terminal())
	assert.True(t, ErrorEvent("failed", "").Terminal())
}

func TestProgressEvent_WireShape(t *testing.T) {
	tests := []struct {
		name string
		ev   ProgressEvent
		want string
	}{
		{"phase", PhaseEvent("loading_profile", 10), `{"type":"phase","phase":"loading_profile","progress":10}`},
		{"thought", ThoughtEvent("Reading the posting", "tailoring", 45), `{"type":"thought","phase":"tailoring","progress":45,"text":"Reading the posting"}`},
		{"error without details", ErrorEvent("Authentication required", ""), `{"type":"error","message":"Authentication required"}`},
		{"error with details", ErrorEvent("Agent failed", "run timed out"), `{"type":"error","message":"Agent failed","details":"run timed out"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ev)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestCompleteEvent(t *testing.T) {
	result := &TailoredResume{MatchScore: 90}
	original := &ProfileSnapshot{Summary: "Engineer"}
	ev := CompleteEvent(result, original)

	assert.Equal(t, EventComplete, ev.Type)
	assert.Equal(t, 100, ev.Progress)
	assert.Same(t, result, ev.Result)
	assert.Same(t, original, ev.OriginalResume)
}
