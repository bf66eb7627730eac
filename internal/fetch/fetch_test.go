package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/logging"
)

func testOptions() *Options {
	return &Options{MaxTries: 3, Logger: logging.Discard()}
}

func TestURL_Success(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, testOptions())
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, DefaultUserAgent, agent)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, testOptions())
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Equal(t, int32(1), calls.Load())

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, testOptions())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPosting_ExtractsDescription(t *testing.T) {
	page := `<html><head><title>Jobs</title></head><body>
		<nav>Home | Careers</nav>
		<h1>Staff Go Engineer</h1>
		<div class="job-description">
			<h2>What you'll do</h2>
			<ul><li>Own the streaming API</li><li>Mentor engineers</li></ul>
			<div class="eeo-statement">We are an equal opportunity employer.</div>
		</div>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	result, err := Posting(context.Background(), server.URL+"/jobs/7", testOptions())
	require.NoError(t, err)
	assert.Equal(t, PlatformUnknown, result.Platform)
	assert.Equal(t, "Staff Go Engineer", result.Title)
	assert.Contains(t, result.Text, "- Own the streaming API")
	assert.NotContains(t, result.Text, "equal opportunity")
	assert.NotContains(t, result.Text, "Careers")

	job := result.JobDescription("", "Acme")
	assert.Equal(t, "Staff Go Engineer", job.Title)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, result.Text, job.FullText)
	assert.Equal(t, server.URL+"/jobs/7", job.SourceURL)
}

func TestPosting_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><script>app()</script></body></html>"))
	}))
	defer server.Close()

	_, err := Posting(context.Background(), server.URL, testOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no readable text")
}
