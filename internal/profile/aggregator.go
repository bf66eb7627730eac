// Package profile assembles a user's stored records into a ProfileSnapshot.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/types"
)

// OtherCategory collects skills stored without a category
const OtherCategory = "Other"

// ErrInsufficientProfileData is returned when a snapshot has neither
// experience nor projects to tailor.
var ErrInsufficientProfileData = errors.New("profile has no experience or projects")

// NotFoundError is returned when no profile exists for the user
type NotFoundError struct {
	UserID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no profile found for user %s", e.UserID)
}

// Store reads profile records. GetContact returns nil when the user does not exist.
type Store interface {
	ListExperience(ctx context.Context, userID uuid.UUID) ([]types.ExperienceEntry, error)
	ListEducation(ctx context.Context, userID uuid.UUID) ([]types.EducationEntry, error)
	ListProjects(ctx context.Context, userID uuid.UUID) ([]types.ProjectEntry, error)
	ListSkills(ctx context.Context, userID uuid.UUID) ([]types.SkillRecord, error)
	GetContact(ctx context.Context, userID uuid.UUID) (*Contact, error)
}

// Contact is the user-level part of a profile
type Contact struct {
	Info    types.ContactInfo
	Summary string
}

// Aggregator builds snapshots from a Store
type Aggregator struct {
	store  Store
	logger logrus.FieldLogger
}

// NewAggregator creates an Aggregator.
func NewAggregator(store Store, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{store: store, logger: logger}
}

// Aggregate reads every category concurrently and assembles a snapshot. A
// failed read leaves that category empty; the failure is logged, not returned.
// A *NotFoundError is returned only when the user is unknown and nothing was read.
func (a *Aggregator) Aggregate(ctx context.Context, userID uuid.UUID) (*types.ProfileSnapshot, error) {
	log := a.logger.WithField("user_id", userID.String())

	var (
		experience []types.ExperienceEntry
		education  []types.EducationEntry
		projects   []types.ProjectEntry
		skills     []types.SkillRecord
		contact    *Contact
		noSuchUser bool
	)

	// Each goroutine owns one variable; errors are absorbed so the group never cancels.
	var g errgroup.Group
	g.Go(func() error {
		experience = readOrEmpty(ctx, log, "experience", func() ([]types.ExperienceEntry, error) {
			return a.store.ListExperience(ctx, userID)
		})
		return nil
	})
	g.Go(func() error {
		education = readOrEmpty(ctx, log, "education", func() ([]types.EducationEntry, error) {
			return a.store.ListEducation(ctx, userID)
		})
		return nil
	})
	g.Go(func() error {
		projects = readOrEmpty(ctx, log, "projects", func() ([]types.ProjectEntry, error) {
			return a.store.ListProjects(ctx, userID)
		})
		return nil
	})
	g.Go(func() error {
		skills = readOrEmpty(ctx, log, "skills", func() ([]types.SkillRecord, error) {
			return a.store.ListSkills(ctx, userID)
		})
		return nil
	})
	g.Go(func() error {
		c, err := a.store.GetContact(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("category", "contact").Warn("profile read failed, continuing without it")
			return nil
		}
		contact = c
		noSuchUser = c == nil
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := &types.ProfileSnapshot{
		Experience: experience,
		Education:  education,
		Projects:   projects,
		Skills:     GroupSkills(skills),
	}
	if contact != nil {
		snapshot.Contact = contact.Info
		snapshot.Summary = contact.Summary
	}

	if noSuchUser && len(experience) == 0 && len(education) == 0 && len(projects) == 0 && len(skills) == 0 {
		return nil, &NotFoundError{UserID: userID}
	}

	log.WithFields(logrus.Fields{
		"experience": len(experience),
		"education":  len(education),
		"projects":   len(projects),
		"skills":     len(skills),
	}).Debug("profile aggregated")

	return snapshot, nil
}

// CheckTailorable returns ErrInsufficientProfileData unless the snapshot has
// experience or projects.
func CheckTailorable(snapshot *types.ProfileSnapshot) error {
	if !snapshot.HasTailorableContent() {
		return ErrInsufficientProfileData
	}
	return nil
}

func readOrEmpty[T any](ctx context.Context, log logrus.FieldLogger, category string, read func() ([]T, error)) []T {
	items, err := read()
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).WithField("category", category).Warn("profile read failed, continuing without it")
		}
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// GroupSkills groups skill records by category in first-seen order, with
// uncategorized skills in a trailing "Other" category. Names are trimmed and
// deduplicated case-insensitively within a category.
func GroupSkills(records []types.SkillRecord) types.SkillsData {
	var (
		order   []string
		byName  = map[string]*types.SkillCategory{}
		seen    = map[string]map[string]bool{}
		other   = &types.SkillCategory{Name: OtherCategory, Skills: []string{}}
		otherOK = map[string]bool{}
	)

	for _, r := range records {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)

		category := strings.TrimSpace(r.Category)
		if category == "" || strings.EqualFold(category, OtherCategory) {
			if !otherOK[key] {
				otherOK[key] = true
				other.Skills = append(other.Skills, name)
			}
			continue
		}

		catKey := strings.ToLower(category)
		cat, ok := byName[catKey]
		if !ok {
			cat = &types.SkillCategory{Name: category, Skills: []string{}}
			byName[catKey] = cat
			seen[catKey] = map[string]bool{}
			order = append(order, catKey)
		}
		if seen[catKey][key] {
			continue
		}
		seen[catKey][key] = true
		cat.Skills = append(cat.Skills, name)
	}

	categories := make([]types.SkillCategory, 0, len(order)+1)
	for _, key := range order {
		categories = append(categories, *byName[key])
	}
	if len(other.Skills) > 0 {
		categories = append(categories, *other)
	}

	return types.SkillsData{Format: types.SkillsFormatCategorized, Categories: categories}
}
