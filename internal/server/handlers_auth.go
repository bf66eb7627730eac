package server

import (
	"net/http"

	"github.com/jonathan/resume-tailor/internal/types"
)

// handleRegister creates an account and returns a bearer token for it.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateStruct(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.deps.Accounts.Register(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.issueToken(w, r, http.StatusCreated, account)
}

// handleLogin exchanges credentials for a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateStruct(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.deps.Accounts.Login(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.issueToken(w, r, http.StatusOK, account)
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, status int, account *types.Account) {
	token, err := s.deps.Tokens.GenerateToken(account.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, status, types.TokenResponse{Account: account, Token: token})
}
