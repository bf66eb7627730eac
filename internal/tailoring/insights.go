package tailoring

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/types"
)

// JobInsights relates a posting's keywords to a candidate profile
type JobInsights struct {
	Keywords        []string `json:"keywords"`
	MatchedSkills   []string `json:"matchedSkills"`
	MissingKeywords []string `json:"missingKeywords"`
}

// ComputeInsights derives the posting keywords, the profile skills the posting
// mentions, and the keywords the profile never mentions.
func ComputeInsights(job *types.JobDescription, postingText string, snapshot *types.ProfileSnapshot) JobInsights {
	insights := JobInsights{
		Keywords:        []string{},
		MatchedSkills:   []string{},
		MissingKeywords: []string{},
	}
	if job == nil {
		return insights
	}

	corpus := postingText + "\n" + strings.Join(job.Requirements, "\n") + "\n" + strings.Join(job.Responsibilities, "\n")
	insights.Keywords = ingestion.ExtractKeywords(corpus, job.Keywords)
	if snapshot == nil {
		insights.MissingKeywords = append(insights.MissingKeywords, insights.Keywords...)
		return insights
	}

	seen := map[string]bool{}
	for _, skill := range snapshot.Skills.All() {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if ingestion.Mentions(corpus, skill) {
			insights.MatchedSkills = append(insights.MatchedSkills, skill)
		}
	}

	profileText := profileText(snapshot)
	for _, kw := range insights.Keywords {
		if !ingestion.Mentions(profileText, kw) {
			insights.MissingKeywords = append(insights.MissingKeywords, kw)
		}
	}
	return insights
}

// profileText flattens everything a keyword could appear in.
func profileText(p *types.ProfileSnapshot) string {
	var b strings.Builder
	write := func(parts ...string) {
		for _, s := range parts {
			if s != "" {
				b.WriteString(s)
				b.WriteByte('\n')
			}
		}
	}
	write(p.Summary)
	write(p.Skills.All()...)
	for _, e := range p.Experience {
		write(e.Position, e.Company)
		write(e.Bullets...)
	}
	for _, e := range p.Education {
		write(e.Degree, e.Field)
		write(e.Highlights...)
	}
	for _, pr := range p.Projects {
		write(pr.Name, pr.Description)
		write(pr.Technologies...)
		write(pr.Bullets...)
	}
	return b.String()
}
