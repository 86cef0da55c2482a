package ats

import (
	"math"
	"regexp"
	"strings"
)

const (
	// MaxMatchedKeywords caps FindMatchedKeywords.
	MaxMatchedKeywords = 20
	// MaxMissingKeywords caps FindMissingKeywords.
	MaxMissingKeywords = 15
)

var (
	digitPattern      = regexp.MustCompile(`[0-9]`)
	actionVerbPattern = regexp.MustCompile(`(?i)(led|managed|created|developed|implemented|achieved|improved|increased|reduced)`)
	educationPattern  = regexp.MustCompile(`(?i)(certification|certified|degree|bachelor|master)`)
	contactPattern    = regexp.MustCompile(`(?i)(email|phone|linkedin|github)`)
)

// HasNumbers reports whether text contains a digit.
func HasNumbers(text string) bool { return digitPattern.MatchString(text) }

// HasActionVerbs reports whether text contains one of the action verbs.
// Matching is substring based, so "skilled" counts through "led".
func HasActionVerbs(text string) bool { return actionVerbPattern.MatchString(text) }

// HasEducation reports whether text mentions a degree or certification.
func HasEducation(text string) bool { return educationPattern.MatchString(text) }

// HasContactInfo reports whether text mentions an email, phone, LinkedIn or GitHub.
func HasContactInfo(text string) bool { return contactPattern.MatchString(text) }

// keywordMatches is the match predicate: bidirectional substring containment.
// It is intentionally loose; "man" matches "management".
func keywordMatches(jobKeyword string, resumeKeywords []string) bool {
	for _, rk := range resumeKeywords {
		if strings.Contains(rk, jobKeyword) || strings.Contains(jobKeyword, rk) {
			return true
		}
	}
	return false
}

// CalculateMatchPercentage returns the rounded share of job keywords matched
// by any resume keyword. It is 0 when jobKeywords is empty.
func CalculateMatchPercentage(resumeKeywords, jobKeywords []string) int {
	if len(jobKeywords) == 0 {
		return 0
	}
	matched := 0
	for _, kw := range jobKeywords {
		if keywordMatches(kw, resumeKeywords) {
			matched++
		}
	}
	return clamp(roundHalfUp(float64(matched)/float64(len(jobKeywords))*100), 0, 100)
}

// FindMissingKeywords returns job keywords with no match, in job ranking order.
func FindMissingKeywords(resumeKeywords, jobKeywords []string) []string {
	return filterKeywords(resumeKeywords, jobKeywords, false, MaxMissingKeywords)
}

// FindMatchedKeywords returns job keywords with a match, in job ranking order.
func FindMatchedKeywords(resumeKeywords, jobKeywords []string) []string {
	return filterKeywords(resumeKeywords, jobKeywords, true, MaxMatchedKeywords)
}

func filterKeywords(resumeKeywords, jobKeywords []string, wantMatch bool, limit int) []string {
	out := make([]string, 0, min(len(jobKeywords), limit))
	for _, kw := range jobKeywords {
		if len(out) == limit {
			break
		}
		if keywordMatches(kw, resumeKeywords) == wantMatch {
			out = append(out, kw)
		}
	}
	return out
}

// CalculateKeywordDensity is round(extracted keywords / words * 100), 0 for
// text without words. The keyword count is capped at MaxKeywords regardless
// of document length, so treat the result as a bounded heuristic rather than
// a literal percentage.
func CalculateKeywordDensity(text string) int {
	words := WordCount(text)
	if words == 0 {
		return 0
	}
	keywords := len(ExtractKeywords(text))
	return roundHalfUp(float64(keywords) / float64(words) * 100)
}

// Score weights.
const (
	matchWeight       = 0.5
	densityWeight     = 3
	densityCap        = 20
	numbersBonus      = 8
	actionVerbsBonus  = 8
	educationBonus    = 7
	contactBonus      = 7
	idealLengthBonus  = 10
	decentLengthBonus = 5
)

// CalculateATSScore combines match percentage, density and resume heuristics
// into a score clamped to [0,100].
func CalculateATSScore(matchPercentage, keywordDensity int, resumeText string) int {
	score := float64(matchPercentage) * matchWeight
	score += math.Min(float64(keywordDensity)*densityWeight, densityCap)

	if HasNumbers(resumeText) {
		score += numbersBonus
	}
	if HasActionVerbs(resumeText) {
		score += actionVerbsBonus
	}
	if HasEducation(resumeText) {
		score += educationBonus
	}
	if HasContactInfo(resumeText) {
		score += contactBonus
	}

	switch words := WordCount(resumeText); {
	case words >= 300 && words <= 1000:
		score += idealLengthBonus
	case words > 200:
		score += decentLengthBonus
	}

	return clamp(roundHalfUp(score), 0, 100)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
