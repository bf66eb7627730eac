// Package tailoring drives a single résumé tailoring request from profile
// loading to a final, decoded result, reporting progress as a stream of events.
package tailoring

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/jonathan/resume-tailor/internal/types"
)

// TailorRequest is the body of a streaming tailoring request
type TailorRequest struct {
	JobDescription *types.JobDescription  `json:"jobDescription" validate:"required"`
	UseProfileData bool                   `json:"useProfileData"`
	ResumeData     *types.ProfileSnapshot `json:"resumeData,omitempty"`
}

var validate = NewValidator()

// NewValidator returns a validator that reports fields by their JSON names
// and understands the notblank tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// ValidateStruct runs the struct tags of v and returns the first failure as a
// *ValidationError.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return FirstValidationError(err)
	}
	return nil
}

// Validate checks the request before any stream is opened. The first problem
// found is returned as a *ValidationError.
func Validate(req *TailorRequest) error {
	if req == nil {
		return &ValidationError{Field: "jobDescription", Message: "required"}
	}
	if err := ValidateStruct(req); err != nil {
		return err
	}
	if !req.UseProfileData && req.ResumeData == nil {
		return &ValidationError{Field: "resumeData", Message: "required when useProfileData is false"}
	}
	return nil
}

// FirstValidationError converts the first validator failure to a ValidationError.
func FirstValidationError(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return &ValidationError{Field: field, Message: fe.Tag()}
	}
	return &ValidationError{Field: "request", Message: "invalid request"}
}
