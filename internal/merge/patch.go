package merge

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// BuildPatch applies the merge rules to an incoming project and its stored
// match: the longer description wins, technologies and bullets are unioned,
// and empty links and start dates are filled. Only fields that change are set.
//
// The end date is never filled: an empty stored end date marks the project as
// ongoing, and an older résumé must not close it.
func BuildPatch(incoming types.ParsedProject, existing types.ProjectEntry) types.ProjectPatch {
	var patch types.ProjectPatch

	if desc := strings.TrimSpace(incoming.Description); len(desc) > len(strings.TrimSpace(existing.Description)) {
		patch.Description = &desc
	}
	if merged, grew := union(existing.Technologies, incoming.Technologies); grew {
		patch.Technologies = merged
	}
	if merged, grew := union(existing.Bullets, incoming.Bullets); grew {
		patch.Bullets = merged
	}

	patch.URL = fill(existing.URL, incoming.URL)
	patch.GitHubURL = fill(existing.GitHubURL, incoming.GitHubURL)
	patch.StartDate = fill(existing.StartDate, incoming.StartDate)

	return patch
}

// union appends the items of add that base lacks, compared case-insensitively.
func union(base, add []string) ([]string, bool) {
	seen := make(map[string]bool, len(base))
	out := make([]string, 0, len(base)+len(add))
	for _, s := range base {
		seen[strings.ToLower(strings.TrimSpace(s))] = true
		out = append(out, s)
	}
	grew := false
	for _, s := range add {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(s))
		grew = true
	}
	return out, grew
}

func fill(current, incoming string) *string {
	incoming = strings.TrimSpace(incoming)
	if strings.TrimSpace(current) != "" || incoming == "" {
		return nil
	}
	return &incoming
}
