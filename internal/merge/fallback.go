package merge

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// normalizeName trims and lowercases a project name for comparison.
func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// normalizeURL reduces a URL to host and path so scheme, "www." and trailing
// slashes do not prevent a match.
func normalizeURL(s string) string {
	u := strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"https://", "http://"} {
		u = strings.TrimPrefix(u, prefix)
	}
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimRight(u, "/")
}

// namesMatch reports an exact or substring match in either direction.
func namesMatch(a, b string) bool {
	a, b = normalizeName(a), normalizeName(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func urlsMatch(a, b []string) bool {
	for _, x := range a {
		x = normalizeURL(x)
		if x == "" {
			continue
		}
		for _, y := range b {
			if x == normalizeURL(y) {
				return true
			}
		}
	}
	return false
}

// candidate is a project the fallback compares against
type candidate struct {
	id   string
	name string
	urls []string
}

func existingCandidates(existing []types.ProjectEntry) []candidate {
	out := make([]candidate, 0, len(existing))
	for _, p := range existing {
		out = append(out, candidate{id: p.ID, name: p.Name, urls: []string{p.URL, p.GitHubURL}})
	}
	return out
}

// fallbackDecide matches one incoming project against candidates by name or
// URL. A match is a skip; anything else is an add. It never updates.
func fallbackDecide(p types.ParsedProject, candidates []candidate) types.MergeDecision {
	urls := []string{p.URL, p.GitHubURL}
	for _, c := range candidates {
		switch {
		case namesMatch(p.Name, c.name):
			return skipDecision(p, c, "name matches existing project \""+c.name+"\"")
		case urlsMatch(urls, c.urls):
			return skipDecision(p, c, "URL matches existing project \""+c.name+"\"")
		}
	}
	return types.MergeDecision{Kind: types.DecisionAdd, Project: p, Reason: "no matching project"}
}

func skipDecision(p types.ParsedProject, c candidate, reason string) types.MergeDecision {
	if c.id == "" {
		reason = "duplicate within this upload: " + reason
	}
	return types.MergeDecision{Kind: types.DecisionSkip, Project: p, ExistingID: c.id, Reason: reason}
}

// Fallback reconciles without an agent. Projects added earlier in the same
// batch count as existing, so a batch never adds the same project twice.
func Fallback(incoming []types.ParsedProject, existing []types.ProjectEntry) types.MergeResult {
	decisions := fallbackDecisions(incoming, existing, nil)
	result := types.MergeResult{Tier: types.MergeTierFallback}
	for i := range incoming {
		result.Append(decisions[i])
	}
	return normalizeResult(result)
}

// fallbackDecisions decides every index not already in decided.
func fallbackDecisions(incoming []types.ParsedProject, existing []types.ProjectEntry, decided map[int]types.MergeDecision) map[int]types.MergeDecision {
	candidates := existingCandidates(existing)
	for i := 0; i < len(incoming); i++ {
		if d, ok := decided[i]; ok && d.Kind == types.DecisionAdd {
			candidates = append(candidates, candidate{name: d.Project.Name, urls: []string{d.Project.URL, d.Project.GitHubURL}})
		}
	}

	out := make(map[int]types.MergeDecision, len(incoming))
	for i, p := range incoming {
		if d, ok := decided[i]; ok {
			out[i] = d
			continue
		}
		d := fallbackDecide(p, candidates)
		if d.Kind == types.DecisionAdd {
			candidates = append(candidates, candidate{name: p.Name, urls: []string{p.URL, p.GitHubURL}})
		}
		out[i] = d
	}
	return out
}

// normalizeResult replaces nil groups with empty ones.
func normalizeResult(r types.MergeResult) types.MergeResult {
	if r.Add == nil {
		r.Add = []types.MergeDecision{}
	}
	if r.Update == nil {
		r.Update = []types.MergeDecision{}
	}
	if r.Skip == nil {
		r.Skip = []types.MergeDecision{}
	}
	return r
}
