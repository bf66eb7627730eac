package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMentions(t *testing.T) {
	tests := []struct {
		text string
		term string
		want bool
	}{
		{"Experience with Go and Kubernetes", "go", true},
		{"Experience with Google Cloud", "Go", false},
		{"Strong C++ skills", "C++", true},
		{"Node.js backend", "Node.js", true},
		{"Build REST APIs", "REST", true},
		{"restful interest", "REST", false},
		{"anything", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, Mentions(tt.text, tt.term))
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	text := "We run Python services on AWS with Docker. Python everywhere."
	got := ExtractKeywords(text, []string{"Leadership", "python", " "})

	assert.Equal(t, []string{"Leadership", "python", "AWS", "Docker"}, got)
}

func TestExtractKeywords_Empty(t *testing.T) {
	got := ExtractKeywords("", nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
