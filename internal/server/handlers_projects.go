package server

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/types"
)

// MergeProjectsRequest is the body of POST /api/projects/merge
type MergeProjectsRequest struct {
	Projects  []types.ParsedProject `json:"projects" validate:"required,min=1,dive"`
	AutoApply bool                  `json:"autoApply"`
}

// ParseResumeRequest is the body of POST /api/resume/parse
type ParseResumeRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
}

// ParseResumeResponse lists the projects found in a résumé
type ParseResumeResponse struct {
	Projects []types.ParsedProject `json:"projects"`
}

// handleMergeProjects reconciles uploaded projects with the caller's stored
// projects and applies the result when autoApply is set.
func (s *Server) handleMergeProjects(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req MergeProjectsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateStruct(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.deps.Merger.Merge(r.Context(), userID, req.Projects, req.AutoApply)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"tier":    outcome.Result.Tier,
		"applied": req.AutoApply,
	}).Info("Projects merged")
	s.jsonResponse(w, http.StatusOK, outcome)
}

// handleParseResume extracts projects from pasted résumé text.
func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserID(r); err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ParseResumeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateStruct(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	projects, err := s.deps.Parser.Parse(r.Context(), req.ResumeText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ParseResumeResponse{Projects: projects})
}
