package types

// AnalysisResult is one scored comparison of a resume against a job description.
// A new input always produces a new record; nothing mutates a stored one.
// Score and MatchPercentage are within [0,100]. KeywordDensity is a bounded
// heuristic and may exceed 100. MatchedKeywords holds at most 20 entries,
// MissingKeywords at most 15 and Suggestions at most 8.
type AnalysisResult struct {
	ID                   string   `json:"id"`
	Score                int      `json:"score"`
	MatchPercentage      int      `json:"matchPercentage"`
	KeywordDensity       int      `json:"keywordDensity"`
	MatchedKeywords      []string `json:"matchedKeywords"`
	MissingKeywords      []string `json:"missingKeywords"`
	Suggestions          []string `json:"suggestions"`
	ResumeText           string   `json:"resumeText"`
	JobDescriptionText   string   `json:"jobDescriptionText"`
	CreatedAtEpochMillis int64    `json:"createdAtEpochMillis"`
}

// ResumeDocument is the resume currently held by the session
type ResumeDocument struct {
	Text             string `json:"text"`
	OriginalFileName string `json:"originalFileName,omitempty"`
}

// Theme is the persisted display preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// KeywordsOutput represents the keyword set extracted from a single text
type KeywordsOutput struct {
	Source   string   `json:"source"`
	Keywords []string `json:"keywords"`
	Density  int      `json:"keywordDensity"`
}

// ImproveOutput represents a rewritten resume and the score movement it produces
type ImproveOutput struct {
	ImprovedText   string          `json:"improvedText"`
	AddedKeywords  []string        `json:"addedKeywords"`
	Before         AnalysisResult  `json:"before"`
	After          *AnalysisResult `json:"after,omitempty"`
	SavedTo        string          `json:"savedTo,omitempty"`
	AppliedToStore bool            `json:"appliedToStore"`
}

// SessionStatus summarises what the local store currently holds
type SessionStatus struct {
	CurrentPage       string `json:"currentPage"`
	HasResume         bool   `json:"hasResume"`
	ResumeFileName    string `json:"resumeFileName,omitempty"`
	HasJobDescription bool   `json:"hasJobDescription"`
	HasAnalysis       bool   `json:"hasAnalysis"`
	LastScore         *int   `json:"lastScore,omitempty"`
	Theme             Theme  `json:"theme"`
}
