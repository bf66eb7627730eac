package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-tailor/internal/profile"
	"github.com/jonathan/resume-tailor/internal/types"
)

// ErrProjectNotFound is returned when an update targets a project the user does not own.
var ErrProjectNotFound = errors.New("project not found")

// ListExperience returns a user's employment history in display order.
func (db *DB) ListExperience(ctx context.Context, userID uuid.UUID) ([]types.ExperienceEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, company, position, location, start_date, end_date, bullets
		 FROM experiences WHERE user_id = $1
		 ORDER BY sort_order, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list experience: %w", err)
	}
	defer rows.Close()

	out := []types.ExperienceEntry{}
	for rows.Next() {
		var (
			id      uuid.UUID
			e       types.ExperienceEntry
			bullets StringArray
		)
		if err := rows.Scan(&id, &e.Company, &e.Position, &e.Location, &e.StartDate, &e.EndDate, &bullets); err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		e.ID = id.String()
		e.Bullets = bullets
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListEducation returns a user's education in display order.
func (db *DB) ListEducation(ctx context.Context, userID uuid.UUID) ([]types.EducationEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, institution, degree, field, location, gpa, start_date, end_date, highlights
		 FROM education WHERE user_id = $1
		 ORDER BY sort_order, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list education: %w", err)
	}
	defer rows.Close()

	out := []types.EducationEntry{}
	for rows.Next() {
		var (
			id         uuid.UUID
			e          types.EducationEntry
			highlights StringArray
		)
		if err := rows.Scan(&id, &e.Institution, &e.Degree, &e.Field, &e.Location, &e.GPA, &e.StartDate, &e.EndDate, &highlights); err != nil {
			return nil, fmt.Errorf("failed to scan education: %w", err)
		}
		e.ID = id.String()
		e.Highlights = highlights
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListProjects returns a user's projects in display order.
func (db *DB) ListProjects(ctx context.Context, userID uuid.UUID) ([]types.ProjectEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, description, technologies, url, github_url, start_date, end_date, bullets
		 FROM projects WHERE user_id = $1
		 ORDER BY sort_order, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	out := []types.ProjectEntry{}
	for rows.Next() {
		var (
			id           uuid.UUID
			p            types.ProjectEntry
			technologies StringArray
			bullets      StringArray
		)
		if err := rows.Scan(&id, &p.Name, &p.Description, &technologies, &p.URL, &p.GitHubURL, &p.StartDate, &p.EndDate, &bullets); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.ID = id.String()
		p.Technologies = technologies
		p.Bullets = bullets
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListSkills returns a user's skill rows in display order.
func (db *DB) ListSkills(ctx context.Context, userID uuid.UUID) ([]types.SkillRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT name, category FROM user_skills WHERE user_id = $1
		 ORDER BY sort_order, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	out := []types.SkillRecord{}
	for rows.Next() {
		var s types.SkillRecord
		if err := rows.Scan(&s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetContact returns the user's contact record, or nil when the user does not exist.
func (db *DB) GetContact(ctx context.Context, userID uuid.UUID) (*profile.Contact, error) {
	var c profile.Contact
	err := db.pool.QueryRow(ctx,
		`SELECT name, email, phone, location, linkedin, github, website, summary
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&c.Info.Name, &c.Info.Email, &c.Info.Phone, &c.Info.Location, &c.Info.LinkedIn, &c.Info.GitHub, &c.Info.Website, &c.Summary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &c, nil
}

// CreateProject appends a project to the end of the user's list and returns its ID.
func (db *DB) CreateProject(ctx context.Context, userID uuid.UUID, p types.ParsedProject) (string, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO projects (user_id, name, description, technologies, url, github_url, start_date, end_date, bullets, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
		         (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM projects WHERE user_id = $1))
		 RETURNING id`,
		userID, p.Name, p.Description, StringArray(p.Technologies), p.URL, p.GitHubURL, p.StartDate, p.EndDate, StringArray(p.Bullets),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create project: %w", err)
	}
	return id.String(), nil
}

// UpdateProject rewrites the fields set in patch. Unset fields keep their stored value.
func (db *DB) UpdateProject(ctx context.Context, userID uuid.UUID, projectID string, patch types.ProjectPatch) error {
	id, err := uuid.Parse(projectID)
	if err != nil {
		return ErrProjectNotFound
	}
	if patch.IsEmpty() {
		return nil
	}

	query, args := buildProjectUpdate(userID, id, patch)
	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// buildProjectUpdate renders the UPDATE statement for the fields a patch sets.
func buildProjectUpdate(userID, projectID uuid.UUID, patch types.ProjectPatch) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Technologies != nil {
		add("technologies", StringArray(patch.Technologies))
	}
	if patch.Bullets != nil {
		add("bullets", StringArray(patch.Bullets))
	}
	if patch.URL != nil {
		add("url", *patch.URL)
	}
	if patch.GitHubURL != nil {
		add("github_url", *patch.GitHubURL)
	}
	if patch.StartDate != nil {
		add("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		add("end_date", *patch.EndDate)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, projectID, userID)
	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args))
	return query, args
}
