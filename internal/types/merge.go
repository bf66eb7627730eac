package types

// ParsedProject is a project extracted from an uploaded résumé, not yet stored
type ParsedProject struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url,omitempty"`
	GitHubURL    string   `json:"githubUrl,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Bullets      []string `json:"bullets"`
}

// ProjectPatch lists the fields an update rewrites. Nil fields are left as stored.
type ProjectPatch struct {
	Description  *string  `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
	URL          *string  `json:"url,omitempty"`
	GitHubURL    *string  `json:"githubUrl,omitempty"`
	StartDate    *string  `json:"startDate,omitempty"`
	EndDate      *string  `json:"endDate,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ProjectPatch) IsEmpty() bool {
	return p.Description == nil && p.Technologies == nil && p.Bullets == nil &&
		p.URL == nil && p.GitHubURL == nil && p.StartDate == nil && p.EndDate == nil
}

// DecisionKind is the action a merge decision takes
type DecisionKind string

// Decision kinds
const (
	DecisionAdd    DecisionKind = "add"
	DecisionUpdate DecisionKind = "update"
	DecisionSkip   DecisionKind = "skip"
)

// MergeDecision is the outcome for one incoming project
type MergeDecision struct {
	Kind       DecisionKind  `json:"kind"`
	Project    ParsedProject `json:"project"`
	ExistingID string        `json:"existingId,omitempty"`
	Patch      *ProjectPatch `json:"patch,omitempty"`
	Reason     string        `json:"reason"`
}

// MergeTier names which reconciliation tier produced a result
type MergeTier string

// Merge tiers
const (
	MergeTierAgent    MergeTier = "agent"
	MergeTierFallback MergeTier = "fallback"
	MergeTierMixed    MergeTier = "mixed"
)

// MergeResult groups decisions by kind
type MergeResult struct {
	Add    []MergeDecision `json:"add"`
	Update []MergeDecision `json:"update"`
	Skip   []MergeDecision `json:"skip"`
	Tier   MergeTier       `json:"tier"`
}

// Append files a decision under its kind.
func (r *MergeResult) Append(d MergeDecision) {
	switch d.Kind {
	case DecisionAdd:
		r.Add = append(r.Add, d)
	case DecisionUpdate:
		r.Update = append(r.Update, d)
	default:
		r.Skip = append(r.Skip, d)
	}
}

// Len returns the number of decisions in the result.
func (r MergeResult) Len() int {
	return len(r.Add) + len(r.Update) + len(r.Skip)
}

// ApplyCounts reports how many decisions were (or would be) applied
type ApplyCounts struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}
