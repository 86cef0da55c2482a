package ats

import "unicode/utf16"

// MaxSuggestions caps GenerateSuggestions.
const MaxSuggestions = 8

// Suggestion messages in check order.
const (
	SuggestLowScore       = "Your resume needs significant improvement to pass ATS screening"
	SuggestLowMatch       = "Add more keywords from the job description to improve relevance"
	SuggestManyMissing    = "Focus on incorporating high-priority missing keywords"
	SuggestNumbers        = "Include quantifiable achievements with numbers and metrics"
	SuggestActionVerbs    = "Use strong action verbs to describe your accomplishments"
	SuggestLength         = "Expand your resume with more detailed experience descriptions"
	SuggestDensity        = "Increase keyword density by adding relevant technical skills"
	SuggestEducation      = "Add certifications or educational qualifications if applicable"
	SuggestModerateMatch  = "Good start! Add a few more relevant skills to boost your match"
	SuggestStrongMatch    = "Strong match! Optimize formatting and add missing keywords"
	SuggestExcellentMatch = "Excellent keyword match! Ensure formatting is ATS-friendly"
	SuggestLooksGood      = "Your resume looks good! Review for any formatting issues"
)

const minResumeChars = 500

// SuggestionInput is the part of an analysis the suggestion checks read.
type SuggestionInput struct {
	Score           int
	MatchPercentage int
	MissingCount    int
	ResumeText      string
	KeywordDensity  int
}

// GenerateSuggestions runs the fixed battery of checks and returns the message
// of each one that fires, in check order, truncated to MaxSuggestions.
func GenerateSuggestions(in SuggestionInput) []string {
	checks := []struct {
		fires   bool
		message string
	}{
		{in.Score < 50, SuggestLowScore},
		{in.MatchPercentage < 40, SuggestLowMatch},
		{in.MissingCount > 10, SuggestManyMissing},
		{!HasNumbers(in.ResumeText), SuggestNumbers},
		{!HasActionVerbs(in.ResumeText), SuggestActionVerbs},
		{utf16Len(in.ResumeText) < minResumeChars, SuggestLength},
		{in.KeywordDensity < 3, SuggestDensity},
		{!HasEducation(in.ResumeText), SuggestEducation},
		{in.MatchPercentage >= 40 && in.MatchPercentage < 60, SuggestModerateMatch},
		{in.MatchPercentage >= 60 && in.MatchPercentage < 80, SuggestStrongMatch},
		{in.MatchPercentage >= 80, SuggestExcellentMatch},
	}

	suggestions := make([]string, 0, MaxSuggestions)
	for _, c := range checks {
		if c.fires {
			suggestions = append(suggestions, c.message)
		}
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, SuggestLooksGood)
	}
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions
}

// utf16Len counts UTF-16 code units, so characters outside the Basic
// Multilingual Plane count twice.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if size := utf16.RuneLen(r); size > 0 {
			n += size
		} else {
			n++
		}
	}
	return n
}
