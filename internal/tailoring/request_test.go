package tailoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *TailorRequest)
		wantField string
	}{
		{"valid", func(*TailorRequest) {}, ""},
		{"missing job description", func(r *TailorRequest) { r.JobDescription = nil }, "jobDescription"},
		{"missing title", func(r *TailorRequest) { r.JobDescription.Title = "" }, "jobDescription.title"},
		{"missing company", func(r *TailorRequest) { r.JobDescription.Company = "" }, "jobDescription.company"},
		{"missing full text", func(r *TailorRequest) { r.JobDescription.FullText = "" }, "jobDescription.fullText"},
		{"blank title", func(r *TailorRequest) { r.JobDescription.Title = "   " }, "jobDescription.title"},
		{"blank company", func(r *TailorRequest) { r.JobDescription.Company = "\t" }, "jobDescription.company"},
		{"blank full text", func(r *TailorRequest) { r.JobDescription.FullText = "\n \n" }, "jobDescription.fullText"},
		{"bad source url", func(r *TailorRequest) { r.JobDescription.SourceURL = "not a url" }, "jobDescription.sourceUrl"},
		{"inline data required", func(r *TailorRequest) { r.UseProfileData = false }, "resumeData"},
		{"inline data present", func(r *TailorRequest) {
			r.UseProfileData = false
			r.ResumeData = &types.ProfileSnapshot{}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(req)

			err := Validate(req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	var verr *ValidationError
	require.ErrorAs(t, Validate(nil), &verr)
	assert.Equal(t, "jobDescription", verr.Field)
}

func TestValidate_BlankPostingReportsNotBlank(t *testing.T) {
	req := testRequest()
	req.JobDescription = &types.JobDescription{Title: "   ", Company: "\t", FullText: "\n"}

	var verr *ValidationError
	require.ErrorAs(t, Validate(req), &verr)
	assert.Equal(t, "jobDescription.title", verr.Field)
	assert.Equal(t, "notblank", verr.Message)
}

func TestValidateStruct(t *testing.T) {
	type body struct {
		Name string `json:"name" validate:"required,notblank"`
	}

	assert.NoError(t, ValidateStruct(&body{Name: "Ada"}))

	var verr *ValidationError
	require.ErrorAs(t, ValidateStruct(&body{Name: " "}), &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, "notblank", verr.Message)

	require.ErrorAs(t, ValidateStruct(&body{}), &verr)
	assert.Equal(t, "required", verr.Message)
}
