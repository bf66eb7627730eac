package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/logging"
)

func TestHTTPClient_SubmitAndPoll(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /runs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var req RunRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "engine-7", req.EngineID)
		assert.JSONEq(t, `{"type":"object"}`, string(req.AnswerFormat))

		_, _ = w.Write([]byte(`{"id":"run-42","status":"running"}`))
	})
	mux.HandleFunc("GET /runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "run-42", r.PathValue("id"))
		if polls.Add(1) < 2 {
			_, _ = w.Write([]byte(`{"id":"run-42","status":"running","progress":["reading job"]}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"run-42","status":"completed","answer":{"matchScore":80},"progress":["reading job","writing"]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/", "key", WithLogger(logging.Discard()))

	var msgs []string
	res, err := Await(context.Background(), client, RunRequest{
		EngineID:     "engine-7",
		Instructions: "tailor",
		AnswerFormat: json.RawMessage(`{"type":"object"}`),
	}, Options{Interval: 5 * time.Millisecond, Ceiling: 2 * time.Second, OnProgress: func(m string) { msgs = append(msgs, m) }})

	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, res.Status)
	assert.JSONEq(t, `{"matchScore":80}`, string(res.Answer))
	assert.Equal(t, []string{"reading job", "writing"}, msgs)
}

func TestHTTPClient_InlineTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"r","status":"failed","error":{"type":"validation","field":"instructions","message":"empty"}}`))
	}))
	defer srv.Close()

	sub, err := NewHTTPClient(srv.URL, "", WithLogger(logging.Discard())).Submit(context.Background(), RunRequest{})
	require.NoError(t, err)
	require.NotNil(t, sub.Result)
	assert.Equal(t, StatusFailed, sub.Result.Status)
	assert.Equal(t, ErrorKindValidation, sub.Result.Error.Kind)
	assert.Equal(t, "instructions", sub.Result.Error.Field)
}

func TestHTTPClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"r","status":"pending"}`))
	}))
	defer srv.Close()

	res, err := NewHTTPClient(srv.URL, "", WithLogger(logging.Discard())).Get(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClient_PermanentStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "no such run", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "", WithLogger(logging.Discard())).Get(context.Background(), "missing")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusSucceeded, normalizeStatus("Completed"))
	assert.Equal(t, StatusFailed, normalizeStatus("cancelled"))
	assert.Equal(t, StatusPending, normalizeStatus("queued"))
	assert.Equal(t, StatusPending, normalizeStatus(""))
}

func TestHTTPClient_UnauthorizedPollFailsFast(t *testing.T) {
	var gets atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /runs", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"run-1","status":"pending"}`))
	})
	mux.HandleFunc("GET /runs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		gets.Add(1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "", WithLogger(logging.Discard()))
	_, err := Await(context.Background(), client, RunRequest{}, Options{Interval: 20 * time.Millisecond, Ceiling: 5 * time.Second})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, int32(1), gets.Load())
}

func TestHTTPClient_SubmitRetryReusesIdempotencyKey(t *testing.T) {
	var keys []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keys = append(keys, r.Header.Get(IdempotencyKeyHeader))
		first := len(keys) == 1
		mu.Unlock()
		if first {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"run-9","status":"pending"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "", WithLogger(logging.Discard()))
	sub, err := client.Submit(context.Background(), RunRequest{Instructions: "x"})
	require.NoError(t, err)
	assert.Equal(t, "run-9", sub.RunID)

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1])

	_, err = client.Submit(context.Background(), RunRequest{Instructions: "y"})
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.NotEqual(t, keys[0], keys[2], "each submission gets its own key")
}
