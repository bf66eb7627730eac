package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "\n\n  {\"a\": 1}  \n",
			expected: `{"a": 1}`,
		},
		{
			name:     "preamble and trailer",
			input:    "Here is the tailored resume:\n{\"a\": {\"b\": 2}}\nLet me know!",
			expected: `{"a": {"b": 2}}`,
		},
		{
			name:     "array passes through",
			input:    `[1, 2]`,
			expected: `[1, 2]`,
		},
		{
			name:     "no JSON at all",
			input:    "sorry, I cannot help",
			expected: "sorry, I cannot help",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestPromptWithSchema(t *testing.T) {
	plain := promptWithSchema(Request{Prompt: "do it"})
	assert.Equal(t, "do it", plain)

	withSchema := promptWithSchema(Request{Prompt: "do it", Schema: json.RawMessage(`{"type":"object"}`)})
	assert.Contains(t, withSchema, "do it")
	assert.Contains(t, withSchema, `{"type":"object"}`)
}
