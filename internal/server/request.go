package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/tailoring"
)

// decodeJSON reads a single JSON object from the body into dst, enforcing the
// body size cap.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &ErrValidation{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", maxErr.Limit)}
		}
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "empty request body"}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if dec.More() {
		return &ErrValidation{Field: "body", Message: "unexpected data after JSON object"}
	}
	return nil
}

// validateStruct runs struct tags and returns the first failure as ErrValidation.
func validateStruct(v any) error {
	var verr *tailoring.ValidationError
	if err := tailoring.ValidateStruct(v); errors.As(err, &verr) {
		return &ErrValidation{Field: verr.Field, Message: verr.Message}
	}
	return nil
}
