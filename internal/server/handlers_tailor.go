package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/stream"
	"github.com/jonathan/resume-tailor/internal/tailoring"
)

// handleTailorStream validates the request, then streams the tailoring run as
// SSE frames until exactly one terminal event has been written. Malformed
// requests get a 400 JSON body and no stream.
func (s *Server) handleTailorStream(w http.ResponseWriter, r *http.Request) {
	var req tailoring.TailorRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := tailoring.Validate(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	// An absent token still streams: the run ends with an unauthenticated event.
	token, _ := middleware.BearerToken(r)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := stream.New()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.deps.Tailor.Run(ctx, token, &req, events)
	}()

	if err := events.Drain(ctx, sse.WriteProgress); err != nil {
		log := s.logger.WithField("path", r.URL.Path)
		if errors.Is(err, context.Canceled) {
			log.Info("Client disconnected from tailoring stream")
		} else {
			log.WithError(err).Warn("Failed to write tailoring event")
		}
		cancel()
	}
	<-done
}
