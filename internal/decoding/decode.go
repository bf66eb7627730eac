package decoding

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Skill category names produced from the flattened agent shape
const (
	CategoryTechnical = "Technical Skills"
	CategoryTools     = "Frameworks & Tools"
)

// Decode converts an agent answer into a TailoredResume. It accepts both the
// flattened agent shape (scalar contact fields, stringified entry arrays,
// technicalSkills/frameworksAndTools) and the canonical JSON of a
// TailoredResume. Missing or malformed parts take default values.
func Decode(raw RawAnswer) types.TailoredResume {
	obj, ok := raw.Object()
	if !ok {
		obj = map[string]any{}
	}

	res := types.TailoredResume{
		Contact:             decodeContact(obj),
		ProfessionalSummary: Str(obj, "professionalSummary", "professional_summary"),
		Experience:          DecodeExperience(obj["experience"]),
		Education:           DecodeEducation(obj["education"]),
		Projects:            DecodeProjects(obj["projects"]),
		Skills:              decodeSkills(obj),
		Summary:             decodeChangeSummary(obj),
		MatchScore:          decodeMatchScore(obj),
	}

	if res.ProfessionalSummary == "" {
		if s, isString := obj["summary"].(string); isString {
			res.ProfessionalSummary = strings.TrimSpace(s)
		}
	}

	return res
}

// DecodeBytes is Decode(ParseRaw(data)).
func DecodeBytes(data []byte) types.TailoredResume {
	return Decode(ParseRaw(data))
}

func decodeContact(obj map[string]any) types.ContactInfo {
	var c types.ContactInfo
	if nested, ok := Object(obj, "contact"); ok {
		c = contactFrom(nested)
	}

	flat := contactFrom(obj)
	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&c.Name, flat.Name)
	overlay(&c.Email, flat.Email)
	overlay(&c.Phone, flat.Phone)
	overlay(&c.Location, flat.Location)
	overlay(&c.LinkedIn, flat.LinkedIn)
	overlay(&c.GitHub, flat.GitHub)
	overlay(&c.Website, flat.Website)
	return c
}

func contactFrom(m map[string]any) types.ContactInfo {
	return types.ContactInfo{
		Name:     Str(m, "name", "fullName"),
		Email:    Str(m, "email"),
		Phone:    Str(m, "phone"),
		Location: Str(m, "location"),
		LinkedIn: Str(m, "linkedin", "linkedIn", "linkedinUrl"),
		GitHub:   Str(m, "github", "gitHub"),
		Website:  Str(m, "website", "portfolio"),
	}
}

// DecodeExperience reads experience entries from a native or stringified array.
func DecodeExperience(v any) []types.ExperienceEntry {
	items := Objects(v)
	out := make([]types.ExperienceEntry, 0, len(items))
	for i, e := range items {
		out = append(out, types.ExperienceEntry{
			ID:        idOr(e, "experience", i),
			Company:   Str(e, "company", "employer", "organization"),
			Position:  Str(e, "position", "title", "role"),
			Location:  Str(e, "location"),
			StartDate: Str(e, "startDate", "start_date", "start"),
			EndDate:   endDate(Str(e, "endDate", "end_date", "end")),
			Bullets:   Strs(e, "bullets", "highlights", "achievements", "responsibilities", "description"),
		})
	}
	return out
}

// DecodeEducation reads education entries from a native or stringified array.
func DecodeEducation(v any) []types.EducationEntry {
	items := Objects(v)
	out := make([]types.EducationEntry, 0, len(items))
	for i, e := range items {
		out = append(out, types.EducationEntry{
			ID:          idOr(e, "education", i),
			Institution: Str(e, "institution", "school", "university"),
			Degree:      Str(e, "degree"),
			Field:       Str(e, "field", "fieldOfStudy", "major"),
			Location:    Str(e, "location"),
			GPA:         Str(e, "gpa", "GPA"),
			StartDate:   Str(e, "startDate", "start_date", "start"),
			EndDate:     endDate(Str(e, "endDate", "end_date", "end")),
			Highlights:  Strs(e, "highlights", "achievements", "bullets"),
		})
	}
	return out
}

// DecodeProjects reads project entries from a native or stringified array.
func DecodeProjects(v any) []types.ProjectEntry {
	items := Objects(v)
	out := make([]types.ProjectEntry, 0, len(items))
	for i, e := range items {
		out = append(out, types.ProjectEntry{
			ID:           idOr(e, "project", i),
			Name:         Str(e, "name", "title"),
			Description:  Str(e, "description", "summary"),
			Technologies: Strs(e, "technologies", "techStack", "tech", "skills"),
			URL:          Str(e, "url", "link", "demoUrl"),
			GitHubURL:    Str(e, "githubUrl", "github", "repository", "repo"),
			StartDate:    Str(e, "startDate", "start_date", "start"),
			EndDate:      endDate(Str(e, "endDate", "end_date", "end")),
			Bullets:      Strs(e, "bullets", "highlights", "achievements"),
		})
	}
	return out
}

func idOr(e map[string]any, prefix string, index int) string {
	if id := Str(e, "id"); id != "" {
		return id
	}
	return fmt.Sprintf("%s-%d", prefix, index+1)
}

// endDate maps "Present" and friends to the empty ongoing sentinel.
func endDate(s string) string {
	switch strings.ToLower(s) {
	case "present", "current", "now", "ongoing", "to date", "till date":
		return ""
	}
	return s
}

func decodeSkills(obj map[string]any) types.SkillsData {
	if nested, ok := Object(obj, "skills"); ok {
		if skills, ok := canonicalSkills(nested); ok {
			return skills
		}
	}

	technical := Strs(obj, "technicalSkills", "technical_skills")
	if len(technical) == 0 {
		// A bare list under "skills"
		technical = Strs(obj, "skills")
	}

	return types.SkillsData{
		Format: types.SkillsFormatCategorized,
		Categories: []types.SkillCategory{
			{Name: CategoryTechnical, Skills: technical},
			{Name: CategoryTools, Skills: Strs(obj, "frameworksAndTools", "frameworks_and_tools", "tools")},
		},
	}
}

func canonicalSkills(m map[string]any) (types.SkillsData, bool) {
	switch types.SkillsFormat(strings.ToLower(Str(m, "format"))) {
	case types.SkillsFormatList:
		return types.SkillsData{Format: types.SkillsFormatList, List: Strs(m, "list")}, true
	case types.SkillsFormatInline:
		return types.SkillsData{Format: types.SkillsFormatInline, Inline: Str(m, "inline")}, true
	case types.SkillsFormatCategorized:
	case "":
		if _, has := m["categories"]; !has {
			return types.SkillsData{}, false
		}
	default:
		return types.SkillsData{}, false
	}

	items := Objects(m["categories"])
	cats := make([]types.SkillCategory, 0, len(items))
	for _, c := range items {
		cats = append(cats, types.SkillCategory{Name: Str(c, "name", "category"), Skills: Strs(c, "skills", "items")})
	}
	return types.SkillsData{Format: types.SkillsFormatCategorized, Categories: cats}, true
}

func decodeChangeSummary(obj map[string]any) types.ChangeSummary {
	src := obj
	if nested, ok := Object(obj, "summary"); ok {
		src = nested
	}

	improvements := Strs(src, "keyImprovements", "key_improvements", "improvements")
	return types.ChangeSummary{
		TotalChanges:    len(improvements),
		KeyImprovements: improvements,
		KeywordsAdded:   Strs(src, "keywordsAdded", "keywords_added"),
		Warnings:        Strs(src, "warnings"),
	}
}

func decodeMatchScore(obj map[string]any) int {
	score, ok := Int(obj, "matchScore")
	if !ok {
		score, ok = Int(obj, "match_score")
	}
	if !ok {
		return 0
	}
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Flatten renders a TailoredResume in the flattened agent shape, the inverse
// of Decode for its own output.
func Flatten(r types.TailoredResume) json.RawMessage {
	out := map[string]any{
		"name":                r.Contact.Name,
		"email":               r.Contact.Email,
		"phone":               r.Contact.Phone,
		"location":            r.Contact.Location,
		"linkedin":            r.Contact.LinkedIn,
		"github":              r.Contact.GitHub,
		"website":             r.Contact.Website,
		"professionalSummary": r.ProfessionalSummary,
		"experience":          stringify(r.Experience),
		"education":           stringify(r.Education),
		"projects":            stringify(r.Projects),
		"summary": map[string]any{
			"keyImprovements": nonNil(r.Summary.KeyImprovements),
			"keywordsAdded":   nonNil(r.Summary.KeywordsAdded),
			"warnings":        nonNil(r.Summary.Warnings),
		},
		"matchScore": r.MatchScore,
	}

	if technical, tools, ok := twoBuckets(r.Skills); ok {
		out["technicalSkills"] = technical
		out["frameworksAndTools"] = tools
	} else {
		out["skills"] = r.Skills
	}

	data, err := json.Marshal(out)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}

func twoBuckets(s types.SkillsData) ([]string, []string, bool) {
	if s.Format != types.SkillsFormatCategorized || len(s.Categories) != 2 {
		return nil, nil, false
	}
	if s.Categories[0].Name != CategoryTechnical || s.Categories[1].Name != CategoryTools {
		return nil, nil, false
	}
	return nonNil(s.Categories[0].Skills), nonNil(s.Categories[1].Skills), true
}

func stringify(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
