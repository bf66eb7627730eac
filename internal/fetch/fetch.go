// Package fetch downloads job postings and turns them into job descriptions.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultTimeout is the per-attempt HTTP timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeTailor/1.0)"

// maxPageBytes caps how much of a page is read.
const maxPageBytes = 8 << 20

// Result holds the raw and processed content of a fetched page.
type Result struct {
	URL         string
	HTML        string
	Text        string
	Title       string
	Platform    Platform
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	Headers    map[string]string
	MaxTries   uint
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxTries:  3,
	}
}

func (o *Options) withDefaults() *Options {
	out := DefaultOptions()
	if o == nil {
		return out
	}
	if o.Timeout > 0 {
		out.Timeout = o.Timeout
	}
	if o.UserAgent != "" {
		out.UserAgent = o.UserAgent
	}
	if o.MaxTries > 0 {
		out.MaxTries = o.MaxTries
	}
	out.Headers = o.Headers
	out.HTTPClient = o.HTTPClient
	out.Logger = o.Logger
	return out
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// URL retrieves a page. Rate limiting and server errors are retried with
// exponential backoff; any other non-200 status is returned at once along
// with the partial result.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	opts = opts.withDefaults()

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var last *Result
	attempt := func() (*Result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, backoff.Permanent(&Error{URL: urlStr, Message: "failed to create request", Cause: err})
		}
		req.Header.Set("User-Agent", opts.UserAgent)
		for key, value := range opts.Headers {
			req.Header.Set(key, value)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		if err != nil {
			return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
		}

		last = &Result{
			URL:         urlStr,
			HTML:        string(body),
			ContentType: resp.Header.Get("Content-Type"),
			StatusCode:  resp.StatusCode,
		}
		if resp.StatusCode == http.StatusOK {
			return last, nil
		}

		statusErr := &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
		if !transientStatus(resp.StatusCode) {
			return nil, backoff.Permanent(statusErr)
		}
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
			return nil, backoff.RetryAfter(secs)
		}
		return nil, statusErr
	}

	result, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(opts.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.WithFields(logrus.Fields{"url": urlStr, "retry": next.String()}).WithError(err).Warn("Page fetch failed, retrying")
		}),
	)
	if err != nil {
		return last, err
	}
	return result, nil
}

// Posting fetches a job posting page and extracts its description text using
// the selectors of the job board it is hosted on.
func Posting(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	result, err := URL(ctx, urlStr, opts)
	if err != nil {
		return result, err
	}

	result.Platform = DetectPlatform(urlStr)
	text, err := ingestion.ExtractText(result.HTML, PlatformContentSelectors(result.Platform), PlatformNoiseSelectors(result.Platform))
	if err != nil {
		return result, &Error{URL: urlStr, Message: "failed to extract posting text", Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return result, &Error{URL: urlStr, Message: "page has no readable text"}
	}
	result.Text = text
	result.Title = ingestion.PageTitle(result.HTML)
	return result, nil
}

// JobDescription builds a job description from a fetched posting. Empty title
// or company fall back to the page title and the posting's host.
func (r *Result) JobDescription(title, company string) types.JobDescription {
	if title == "" {
		title = r.Title
	}
	if company == "" {
		company = CompanyFromURL(r.URL)
	}
	return types.JobDescription{
		Title:     title,
		Company:   company,
		FullText:  r.Text,
		SourceURL: r.URL,
	}
}
