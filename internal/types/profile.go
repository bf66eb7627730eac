// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// PresentLabel is how an ongoing entry's end date is rendered.
const PresentLabel = "Present"

// ContactInfo holds the candidate's contact record
type ContactInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Website  string `json:"website"`
}

// IsZero reports whether no contact field is set.
func (c ContactInfo) IsZero() bool {
	return c == ContactInfo{}
}

// ExperienceEntry is one employment record.
// An empty EndDate means the position is current.
type ExperienceEntry struct {
	ID        string   `json:"id"`
	Company   string   `json:"company"`
	Position  string   `json:"position"`
	Location  string   `json:"location"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate,omitempty"`
	Bullets   []string `json:"bullets"`
}

// Ongoing reports whether the entry has no end date.
func (e ExperienceEntry) Ongoing() bool {
	return strings.TrimSpace(e.EndDate) == ""
}

// EducationEntry is one education record.
// An empty EndDate means the program is in progress.
type EducationEntry struct {
	ID          string   `json:"id"`
	Institution string   `json:"institution"`
	Degree      string   `json:"degree"`
	Field       string   `json:"field"`
	Location    string   `json:"location"`
	GPA         string   `json:"gpa"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate,omitempty"`
	Highlights  []string `json:"highlights"`
}

// Ongoing reports whether the entry has no end date.
func (e EducationEntry) Ongoing() bool {
	return strings.TrimSpace(e.EndDate) == ""
}

// ProjectEntry is one project record.
// An empty EndDate means the project is still active.
type ProjectEntry struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url"`
	GitHubURL    string   `json:"githubUrl"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate,omitempty"`
	Bullets      []string `json:"bullets"`
}

// Ongoing reports whether the entry has no end date.
func (p ProjectEntry) Ongoing() bool {
	return strings.TrimSpace(p.EndDate) == ""
}

// SkillsFormat selects which SkillsData representation is populated
type SkillsFormat string

// Skills formats
const (
	SkillsFormatList        SkillsFormat = "list"
	SkillsFormatInline      SkillsFormat = "inline"
	SkillsFormatCategorized SkillsFormat = "categorized"
)

// SkillCategory is a named group of skills
type SkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// SkillsData is a tagged union over the three skills layouts.
// Only the field matching Format is populated.
type SkillsData struct {
	Format     SkillsFormat    `json:"format"`
	List       []string        `json:"list,omitempty"`
	Inline     string          `json:"inline,omitempty"`
	Categories []SkillCategory `json:"categories,omitempty"`
}

// Normalize clears every representation except the one selected by Format.
// An unknown format is treated as categorized.
func (s SkillsData) Normalize() SkillsData {
	switch s.Format {
	case SkillsFormatList:
		return SkillsData{Format: SkillsFormatList, List: s.List}
	case SkillsFormatInline:
		return SkillsData{Format: SkillsFormatInline, Inline: s.Inline}
	default:
		return SkillsData{Format: SkillsFormatCategorized, Categories: s.Categories}
	}
}

// All returns every skill name regardless of format.
func (s SkillsData) All() []string {
	switch s.Format {
	case SkillsFormatList:
		return append([]string(nil), s.List...)
	case SkillsFormatInline:
		var out []string
		for _, part := range strings.Split(s.Inline, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		var out []string
		for _, c := range s.Categories {
			out = append(out, c.Skills...)
		}
		return out
	}
}

// SkillRecord is a stored skill row before grouping
type SkillRecord struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// ProfileSnapshot is a user's profile gathered for a single request
type ProfileSnapshot struct {
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
	Projects   []ProjectEntry    `json:"projects"`
	Skills     SkillsData        `json:"skills"`
	Contact    ContactInfo       `json:"contact"`
	Summary    string            `json:"summary,omitempty"`
}

// HasTailorableContent reports whether the snapshot carries experience or projects.
func (p *ProfileSnapshot) HasTailorableContent() bool {
	return p != nil && (len(p.Experience) > 0 || len(p.Projects) > 0)
}
