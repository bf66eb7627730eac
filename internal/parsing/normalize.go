package parsing

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// skillNormalizations maps common technology name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"python3":    "Python",
}

// NormalizeSkillName normalizes a technology name to its canonical form.
// Known variants map to their canonical spelling and lowercase single words
// are capitalized; acronyms and mixed-case names are left alone.
func NormalizeSkillName(skillName string) string {
	normalized := strings.Join(strings.Fields(skillName), " ")
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	if normalized == lower && !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}
	return normalized
}

// NormalizeTechnologies canonicalizes names and removes duplicates, keeping
// the first occurrence. The result is never nil.
func NormalizeTechnologies(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		n := NormalizeSkillName(name)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// toParsed converts a decoded entry into a project awaiting reconciliation.
func toParsed(p types.ProjectEntry) types.ParsedProject {
	bullets := make([]string, 0, len(p.Bullets))
	for _, b := range p.Bullets {
		if b = strings.TrimSpace(b); b != "" {
			bullets = append(bullets, b)
		}
	}
	return types.ParsedProject{
		Name:         strings.TrimSpace(p.Name),
		Description:  strings.TrimSpace(p.Description),
		Technologies: NormalizeTechnologies(p.Technologies),
		URL:          strings.TrimSpace(p.URL),
		GitHubURL:    strings.TrimSpace(p.GitHubURL),
		StartDate:    strings.TrimSpace(p.StartDate),
		EndDate:      strings.TrimSpace(p.EndDate),
		Bullets:      bullets,
	}
}
