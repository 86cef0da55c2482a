// Package rewrite strengthens resume wording and appends missing skills.
package rewrite

import (
	"regexp"
	"strings"
)

const (
	// DefaultSkillsLimit is how many missing keywords the skills section lists.
	DefaultSkillsLimit = 10

	SkillsHeader    = "\n\n## Additional Relevant Skills\n"
	SkillsSeparator = " • "
)

// ActionVerbs replace WeakPhrases position by position.
var ActionVerbs = []string{
	"Spearheaded", "Orchestrated", "Pioneered", "Architected", "Optimized",
	"Streamlined", "Accelerated", "Transformed", "Implemented", "Developed",
}

// WeakPhrases are replaced case-insensitively as whole words.
var WeakPhrases = []string{"did", "made", "worked on", "responsible for", "helped with", "was part of"}

type replacement struct {
	pattern *regexp.Regexp
	verb    string
}

var replacements = compileReplacements()

func compileReplacements() []replacement {
	out := make([]replacement, 0, len(WeakPhrases))
	for i, phrase := range WeakPhrases {
		if i >= len(ActionVerbs) {
			break
		}
		out = append(out, replacement{
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`),
			verb:    ActionVerbs[i],
		})
	}
	return out
}

// Rewriter rewrites resume text. The zero value lists DefaultSkillsLimit skills.
type Rewriter struct {
	SkillsLimit int
}

// ImproveResume rewrites resumeText with the default skills limit.
func ImproveResume(resumeText string, missingKeywords []string) string {
	return Rewriter{}.Improve(resumeText, missingKeywords)
}

// Improve swaps weak phrases for action verbs and, when keywords are missing,
// appends an "Additional Relevant Skills" section. It does not rescore.
func (r Rewriter) Improve(resumeText string, missingKeywords []string) string {
	improved := resumeText
	for _, rep := range replacements {
		improved = rep.pattern.ReplaceAllLiteralString(improved, rep.verb)
	}

	added := r.AddedKeywords(missingKeywords)
	if len(added) == 0 {
		return improved
	}

	var b strings.Builder
	b.Grow(len(improved) + len(SkillsHeader) + 16*len(added))
	b.WriteString(improved)
	b.WriteString(SkillsHeader)
	b.WriteString(strings.Join(added, SkillsSeparator))
	b.WriteString("\n")
	return b.String()
}

// AddedKeywords returns the missing keywords that Improve lists, never more
// than DefaultSkillsLimit.
func (r Rewriter) AddedKeywords(missingKeywords []string) []string {
	limit := r.SkillsLimit
	if limit <= 0 || limit > DefaultSkillsLimit {
		limit = DefaultSkillsLimit
	}
	added := make([]string, 0, min(limit, len(missingKeywords)))
	for _, kw := range missingKeywords {
		if len(added) == limit {
			break
		}
		added = append(added, kw)
	}
	return added
}
