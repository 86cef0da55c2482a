package ats

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMatchPercentage(t *testing.T) {
	tests := []struct {
		name     string
		resume   []string
		job      []string
		expected int
	}{
		{"empty job set", []string{"python"}, nil, 0},
		{"empty resume set", nil, []string{"python", "docker"}, 0},
		{"full match", []string{"python", "docker"}, []string{"docker", "python"}, 100},
		{"rounds down", []string{"python"}, []string{"python", "docker", "aws"}, 33},
		{"rounds up", []string{"python", "docker"}, []string{"python", "docker", "aws"}, 67},
		{"job keyword inside resume keyword", []string{"management"}, []string{"man"}, 100},
		{"resume keyword inside job keyword", []string{"manage"}, []string{"management"}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateMatchPercentage(tt.resume, tt.job))
		})
	}
}

func TestMatchedAndMissingKeywords(t *testing.T) {
	resume := []string{"python", "kubernetes", "projects."}
	job := []string{"project", "python", "terraform", "kube", "aws"}

	matched := FindMatchedKeywords(resume, job)
	missing := FindMissingKeywords(resume, job)

	assert.Equal(t, []string{"project", "python", "kube"}, matched)
	assert.Equal(t, []string{"terraform", "aws"}, missing)

	for _, kw := range matched {
		assert.NotContains(t, missing, kw)
	}
}

func TestMatchedAndMissingKeywordCaps(t *testing.T) {
	job := make([]string, 0, 40)
	for i := range 40 {
		job = append(job, fmt.Sprintf("skill%02d", i))
	}

	missing := FindMissingKeywords([]string{"unrelated"}, job)
	assert.Len(t, missing, MaxMissingKeywords)
	assert.Equal(t, job[:MaxMissingKeywords], missing)

	matched := FindMatchedKeywords([]string{"skill"}, job)
	assert.Len(t, matched, MaxMatchedKeywords)
	assert.Equal(t, job[:MaxMatchedKeywords], matched)

	assert.NotNil(t, FindMatchedKeywords(nil, nil))
	assert.NotNil(t, FindMissingKeywords(nil, nil))
}

func TestCalculateKeywordDensity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty", "", 0},
		{"whitespace only", " \n ", 0},
		{"one keyword two words", "python python", 50},
		{"all stop words", "the and of", 0},
		{"scenario resume", "Worked on reports. Managed 5 projects.", 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateKeywordDensity(tt.text))
		})
	}
}

func TestCalculateATSScore(t *testing.T) {
	tests := []struct {
		name     string
		match    int
		density  int
		text     string
		expected int
	}{
		{"empty resume", 0, 0, "", 0},
		{"match and density only", 100, 10, "", 70},
		{"density contribution capped", 0, 1000, "", 20},
		{"ideal length bonus", 0, 0, strings.Repeat("word ", 300), 10},
		{"upper ideal boundary", 0, 0, strings.Repeat("word ", 1000), 10},
		{"decent length bonus", 0, 0, strings.Repeat("word ", 250), 5},
		{"too long still gets decent bonus", 0, 0, strings.Repeat("word ", 1001), 5},
		{"exactly 200 words gets nothing", 0, 0, strings.Repeat("word ", 200), 0},
		{"digit bonus", 0, 0, "5", 8},
		{"action verb bonus", 0, 0, "Managed", 8},
		{"education bonus", 0, 0, "Bachelor", 7},
		{"contact bonus", 0, 0, "LinkedIn", 7},
		{"half point rounds up", 1, 0, "", 1},
		{"clamped high", 1000, 1000, "5 led degree email", 100},
		{"clamped low", -500, 0, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateATSScore(tt.match, tt.density, tt.text))
		})
	}
}

func TestCalculateATSScoreStaysInRange(t *testing.T) {
	inputs := []string{
		"",
		strings.Repeat("python developed 42 degree email ", 2000),
		strings.Repeat("1234567890 ", 500),
		strings.Repeat("x", 100000),
	}

	for _, text := range inputs {
		resumeKeywords := ExtractKeywords(text)
		match := CalculateMatchPercentage(resumeKeywords, []string{"python", "docker"})
		density := CalculateKeywordDensity(text)
		score := CalculateATSScore(match, density, text)

		assert.GreaterOrEqual(t, match, 0)
		assert.LessOrEqual(t, match, 100)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestHeuristicPatterns(t *testing.T) {
	// Patterns match substrings, so "skilled" counts as an action verb through "led".
	assert.True(t, HasActionVerbs("highly skilled"))
	assert.False(t, HasActionVerbs("worked on reports"))
	assert.True(t, HasEducation("AWS Certified"))
	assert.True(t, HasContactInfo("github.com/someone"))
	assert.False(t, HasNumbers("no digits here"))
}
