package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HTTPClient talks to a remote agent service:
//
//	POST {base}/runs       submit, returns a run (possibly already terminal)
//	GET  {base}/runs/{id}  current state of a run
//
// Every submission carries an Idempotency-Key header that stays the same
// across retries, so a retried POST never creates a second run.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxTries   uint
	logger     logrus.FieldLogger
}

// HTTPOption configures an HTTPClient
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.httpClient = c }
}

// WithMaxTries sets how many attempts a transient failure gets.
func WithMaxTries(n uint) HTTPOption {
	return func(h *HTTPClient) { h.maxTries = n }
}

// WithLogger sets the logger used for retry notices.
func WithLogger(l logrus.FieldLogger) HTTPOption {
	return func(h *HTTPClient) { h.logger = l }
}

// NewHTTPClient creates a client for the agent service at baseURL.
func NewHTTPClient(baseURL, apiKey string, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxTries:   3,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// wireRun is the service's run representation. Errors arrive in several
// shapes and are normalized by ParseErrorPayload.
type wireRun struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Answer   json.RawMessage `json:"answer,omitempty"`
	Error    json.RawMessage `json:"error,omitempty"`
	Progress []string        `json:"progress,omitempty"`
}

func (w *wireRun) toResult() *RunResult {
	res := &RunResult{
		RunID:    w.ID,
		Status:   normalizeStatus(w.Status),
		Answer:   w.Answer,
		Error:    ParseErrorPayload(w.Error),
		Progress: w.Progress,
	}
	if res.Status == StatusFailed && res.Error == nil {
		res.Error = &RunError{Kind: ErrorKindEngine, Message: "run failed without error detail"}
	}
	return res
}

func normalizeStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "succeeded", "success", "completed", "complete", "done":
		return StatusSucceeded
	case "failed", "failure", "error", "cancelled", "canceled":
		return StatusFailed
	default:
		return StatusPending
	}
}

// Submit creates a run.
func (h *HTTPClient) Submit(ctx context.Context, req RunRequest) (*Submission, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run request: %w", err)
	}

	headers := http.Header{}
	headers.Set(IdempotencyKeyHeader, uuid.NewString())
	run, err := h.do(ctx, http.MethodPost, h.baseURL+"/runs", body, headers)
	if err != nil {
		return nil, err
	}

	res := run.toResult()
	if res.Status.Terminal() {
		return &Submission{RunID: res.RunID, Result: res}, nil
	}
	return &Submission{RunID: res.RunID}, nil
}

// Get fetches the current state of a run.
func (h *HTTPClient) Get(ctx context.Context, runID string) (*RunResult, error) {
	run, err := h.do(ctx, http.MethodGet, h.baseURL+"/runs/"+url.PathEscape(runID), nil, nil)
	if err != nil {
		return nil, err
	}
	res := run.toResult()
	if res.RunID == "" {
		res.RunID = runID
	}
	return res, nil
}

// StatusError is a non-2xx response from the agent service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("agent service returned %d: %s", e.StatusCode, e.Body)
}

// Is makes statuses that retrying cannot fix match ErrPermanent.
func (e *StatusError) Is(target error) bool {
	return target == ErrPermanent && !transientStatus(e.StatusCode)
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout
}

// IdempotencyKeyHeader deduplicates retried submissions on the agent service.
const IdempotencyKeyHeader = "Idempotency-Key"

func (h *HTTPClient) do(ctx context.Context, method, endpoint string, body []byte, headers http.Header) (*wireRun, error) {
	attempt := func() (*wireRun, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		for k, v := range headers {
			req.Header[k] = v
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if h.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.apiKey)
		}

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
			if !transientStatus(resp.StatusCode) {
				return nil, backoff.Permanent(statusErr)
			}
			if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
				return nil, backoff.RetryAfter(secs)
			}
			return nil, statusErr
		}

		var run wireRun
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to decode run: %w: %w", ErrPermanent, err))
		}
		return &run, nil
	}

	return backoff.Retry(ctx, attempt,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(h.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			h.logger.WithFields(logrus.Fields{
				"method": method,
				"url":    endpoint,
				"retry":  next.String(),
			}).WithError(err).Warn("agent request failed, retrying")
		}),
	)
}
