package types

// ChangeSummary describes what the agent changed
type ChangeSummary struct {
	TotalChanges    int      `json:"totalChanges"`
	KeyImprovements []string `json:"keyImprovements"`
	KeywordsAdded   []string `json:"keywordsAdded"`
	Warnings        []string `json:"warnings"`
}

// TailoredResume is the canonical decoded output of a tailoring run
type TailoredResume struct {
	Contact             ContactInfo       `json:"contact"`
	ProfessionalSummary string            `json:"professionalSummary"`
	Experience          []ExperienceEntry `json:"experience"`
	Education           []EducationEntry  `json:"education"`
	Projects            []ProjectEntry    `json:"projects"`
	Skills              SkillsData        `json:"skills"`
	Summary             ChangeSummary     `json:"summary"`
	MatchScore          int               `json:"matchScore"`
}
