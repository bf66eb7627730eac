package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-tailor/internal/auth"
	"github.com/jonathan/resume-tailor/internal/types"
)

// CheckEmailExists reports whether an account uses email.
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// CreateUser inserts an account and returns it.
func (db *DB) CreateUser(ctx context.Context, name, email, passwordHash string) (*auth.User, error) {
	u := auth.User{Name: name, Email: email, PasswordHash: passwordHash}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		name, email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

// GetUserByEmail returns the account for email, or nil when none exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	var u auth.User
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// DeleteUser removes an account and, by cascade, its profile.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// UpdateContact replaces the contact fields and summary of a user.
func (db *DB) UpdateContact(ctx context.Context, id uuid.UUID, c types.ContactInfo, summary string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET name = $2, phone = $3, location = $4, linkedin = $5, github = $6,
		        website = $7, summary = $8, updated_at = NOW()
		 WHERE id = $1`,
		id, c.Name, c.Phone, c.Location, c.LinkedIn, c.GitHub, c.Website, summary,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// AddExperience appends an employment entry for a user.
func (db *DB) AddExperience(ctx context.Context, userID uuid.UUID, e types.ExperienceEntry) (string, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO experiences (user_id, company, position, location, start_date, end_date, bullets, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7,
		         (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM experiences WHERE user_id = $1))
		 RETURNING id`,
		userID, e.Company, e.Position, e.Location, e.StartDate, e.EndDate, StringArray(e.Bullets),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to add experience: %w", err)
	}
	return id.String(), nil
}

// AddSkill appends a skill for a user.
func (db *DB) AddSkill(ctx context.Context, userID uuid.UUID, s types.SkillRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_skills (user_id, name, category, sort_order)
		 VALUES ($1, $2, $3, (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM user_skills WHERE user_id = $1))`,
		userID, s.Name, s.Category,
	)
	if err != nil {
		return fmt.Errorf("failed to add skill: %w", err)
	}
	return nil
}
