package ats

import (
	"strconv"
	"time"

	"atsmatch/internal/types"

	"github.com/google/uuid"
)

// analysisNamespace scopes analysis IDs so equal inputs at an equal instant get equal IDs.
var analysisNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("atsmatch/analysis"))

// Analyzer chains extraction, scoring and suggestions into one AnalysisResult.
type Analyzer struct {
	// Now stamps CreatedAtEpochMillis. It is the only non-deterministic input.
	Now func() time.Time
}

// NewAnalyzer returns an Analyzer stamped with the wall clock.
func NewAnalyzer() *Analyzer {
	return &Analyzer{Now: time.Now}
}

// Analyze scores resumeText against jobDescriptionText. Every call returns a
// fresh record.
func (a *Analyzer) Analyze(resumeText, jobDescriptionText string) types.AnalysisResult {
	resumeKeywords := ExtractKeywords(resumeText)
	jobKeywords := ExtractKeywords(jobDescriptionText)

	matchPercentage := CalculateMatchPercentage(resumeKeywords, jobKeywords)
	keywordDensity := CalculateKeywordDensity(resumeText)
	matched := FindMatchedKeywords(resumeKeywords, jobKeywords)
	missing := FindMissingKeywords(resumeKeywords, jobKeywords)
	score := CalculateATSScore(matchPercentage, keywordDensity, resumeText)

	suggestions := GenerateSuggestions(SuggestionInput{
		Score:           score,
		MatchPercentage: matchPercentage,
		MissingCount:    len(missing),
		ResumeText:      resumeText,
		KeywordDensity:  keywordDensity,
	})

	createdAt := a.now().UnixMilli()

	return types.AnalysisResult{
		ID:                   analysisID(resumeText, jobDescriptionText, createdAt),
		Score:                score,
		MatchPercentage:      matchPercentage,
		KeywordDensity:       keywordDensity,
		MatchedKeywords:      matched,
		MissingKeywords:      missing,
		Suggestions:          suggestions,
		ResumeText:           resumeText,
		JobDescriptionText:   jobDescriptionText,
		CreatedAtEpochMillis: createdAt,
	}
}

func (a *Analyzer) now() time.Time {
	if a == nil || a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func analysisID(resumeText, jobDescriptionText string, createdAt int64) string {
	name := resumeText + "\x00" + jobDescriptionText + "\x00" + strconv.FormatInt(createdAt, 10)
	return uuid.NewSHA1(analysisNamespace, []byte(name)).String()
}

// Band is a coarse label for a score or match percentage.
type Band string

const (
	BandExcellent Band = "Excellent"
	BandGood      Band = "Good"
	BandFair      Band = "Fair"
	BandNeedsWork Band = "Needs Work"

	MatchStrong   Band = "strong"
	MatchModerate Band = "moderate"
	MatchWeak     Band = "weak"
)

// ScoreBand labels an ATS score.
func ScoreBand(score int) Band {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandFair
	default:
		return BandNeedsWork
	}
}

// MatchBand labels a keyword match percentage.
func MatchBand(matchPercentage int) Band {
	switch {
	case matchPercentage >= 60:
		return MatchStrong
	case matchPercentage >= 40:
		return MatchModerate
	default:
		return MatchWeak
	}
}
