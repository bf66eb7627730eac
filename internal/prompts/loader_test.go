package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(TailoringFile, "tailor-resume")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.JobTitle}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(MergeFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() { assert.NotEmpty(t, MustGet(ParsingFile, "parse-resume")) })
}

func TestFormat(t *testing.T) {
	result := Format("Hello {{.Name}}, welcome to {{.Company}}! {{.Name}}", map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	})
	assert.Equal(t, "Hello Alice, welcome to Acme Corp! Alice", result)

	assert.Equal(t, "{{.Untouched}}", Format("{{.Untouched}}", nil))
}

func TestRender(t *testing.T) {
	out, err := Render(ParsingFile, "parse-resume", map[string]string{"ResumeText": "Built JARVIS AI"})
	require.NoError(t, err)
	assert.Contains(t, out, "Built JARVIS AI")
	assert.NotContains(t, out, "{{.")

	_, err = Render(ParsingFile, "parse-resume", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{.ResumeText}}")

	out, err = Render(ParsingFile, "parse-resume", map[string]string{"ResumeText": "uses {{.Templates}} daily"})
	require.NoError(t, err, "placeholder syntax inside a value is not an unfilled placeholder")
	assert.Contains(t, out, "{{.Templates}}")
}

func TestAllTemplatesRender(t *testing.T) {
	tests := []struct {
		file string
		key  string
		data map[string]string
	}{
		{TailoringFile, "tailor-resume", map[string]string{
			"JobTitle": "t", "Company": "c", "JobText": "j", "Requirements": "r",
			"Keywords": "k", "MatchedSkills": "m", "MissingKeywords": "x", "Profile": "{}",
		}},
		{TailoringFile, "posting-unavailable-warning", nil},
		{MergeFile, "reconcile-projects", map[string]string{"NewProjects": "[]", "ExistingProjects": "[]"}},
		{ParsingFile, "parse-resume", map[string]string{"ResumeText": "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.file+"/"+tt.key, func(t *testing.T) {
			_, err := Render(tt.file, tt.key, tt.data)
			assert.NoError(t, err)
		})
	}
}

func TestList(t *testing.T) {
	keys, err := List(TailoringFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"posting-unavailable-warning", "tailor-resume"}, keys)
}
