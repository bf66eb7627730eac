package types

// JobDescription is the posting a résumé is tailored against
type JobDescription struct {
	Title            string   `json:"title" validate:"required,notblank"`
	Company          string   `json:"company" validate:"required,notblank"`
	FullText         string   `json:"fullText" validate:"required,notblank"`
	Requirements     []string `json:"requirements,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	SourceURL        string   `json:"sourceUrl,omitempty" validate:"omitempty,url"`
}
