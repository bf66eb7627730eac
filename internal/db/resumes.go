package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-tailor/internal/types"
)

// SavedResume is a tailored résumé stored with the posting it targets
type SavedResume struct {
	ID             uuid.UUID            `json:"id"`
	UserID         uuid.UUID            `json:"userId"`
	JobDescription types.JobDescription `json:"jobDescription"`
	Resume         types.TailoredResume `json:"resume"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// SaveResume stores a tailored résumé and returns its ID.
func (db *DB) SaveResume(ctx context.Context, userID uuid.UUID, job types.JobDescription, resume types.TailoredResume) (uuid.UUID, error) {
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job description: %w", err)
	}
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal resume: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO saved_resumes (user_id, job_description, resume)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		userID, jobJSON, resumeJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save resume: %w", err)
	}
	return id, nil
}

// GetResume returns a saved résumé owned by userID, or nil when there is none.
func (db *DB) GetResume(ctx context.Context, userID, id uuid.UUID) (*SavedResume, error) {
	var (
		saved      SavedResume
		jobJSON    []byte
		resumeJSON []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, job_description, resume, created_at
		 FROM saved_resumes WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&saved.ID, &saved.UserID, &jobJSON, &resumeJSON, &saved.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	if err := json.Unmarshal(jobJSON, &saved.JobDescription); err != nil {
		return nil, fmt.Errorf("failed to decode stored job description: %w", err)
	}
	if err := json.Unmarshal(resumeJSON, &saved.Resume); err != nil {
		return nil, fmt.Errorf("failed to decode stored resume: %w", err)
	}
	return &saved, nil
}
