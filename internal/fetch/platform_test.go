package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://job-boards.greenhouse.io/doordashusa/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/company/jobs/123", PlatformGreenhouse},
		{"https://jobs.lever.co/company/job-id", PlatformLever},
		{"https://company.wd5.myworkdayjobs.com/en-US/External", PlatformWorkday},
		{"https://workday.com/jobs", PlatformWorkday},
		{"https://example.com/jobs", PlatformUnknown},
		{"https://notgreenhouse.io/jobs", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPlatformSelectors(t *testing.T) {
	assert.Contains(t, PlatformContentSelectors(PlatformGreenhouse), ".job__description.body")
	assert.Contains(t, PlatformContentSelectors(PlatformUnknown), ".job-description")
	assert.Contains(t, PlatformContentSelectors(PlatformUnknown), "main")

	greenhouse := PlatformNoiseSelectors(PlatformGreenhouse)
	assert.Contains(t, greenhouse, "#application-form")
	assert.Contains(t, greenhouse, ".voluntary-self-id")

	generic := PlatformNoiseSelectors(PlatformUnknown)
	assert.Contains(t, generic, ".eeo-statement")
	assert.NotContains(t, generic, ".voluntary-self-id")
}

func TestPlatformNoiseSelectors_DoesNotAlias(t *testing.T) {
	first := PlatformNoiseSelectors(PlatformLever)
	second := PlatformNoiseSelectors(PlatformWorkday)
	assert.Contains(t, first, ".posting-apply")
	assert.NotContains(t, second, ".posting-apply")
}

func TestCompanyFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://boards.greenhouse.io/acme-robotics/jobs/123", "Acme Robotics"},
		{"https://jobs.lever.co/stripe/abc-123", "Stripe"},
		{"https://nvidia.wd5.myworkdayjobs.com/en-US/External", "Nvidia"},
		{"https://careers.example.com/jobs/42", "Example"},
		{"https://www.globex.io/careers", "Globex"},
		{"http://localhost:8080/job", "Localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, CompanyFromURL(tt.url))
		})
	}
}
