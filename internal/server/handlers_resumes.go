package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/types"
)

// SaveResumeRequest is the body of POST /api/resumes
type SaveResumeRequest struct {
	JobDescription *types.JobDescription `json:"jobDescription" validate:"required"`
	Resume         *types.TailoredResume `json:"resume" validate:"required"`
}

// SaveResumeResponse identifies a stored résumé
type SaveResumeResponse struct {
	ID uuid.UUID `json:"id"`
}

// handleSaveResume stores a tailored résumé for the caller.
func (s *Server) handleSaveResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SaveResumeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateStruct(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.deps.Resumes.SaveResume(r.Context(), userID, *req.JobDescription, *req.Resume)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, SaveResumeResponse{ID: id})
}

// handleGetResume returns one of the caller's saved résumés.
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid resume ID format")
		return
	}

	saved, err := s.deps.Resumes.GetResume(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if saved == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "resume"})
		return
	}
	s.jsonResponse(w, http.StatusOK, saved)
}
