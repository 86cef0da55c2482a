// Package ats scores how well a resume matches a job description the way
// simple applicant tracking system keyword filters do.
//
// Everything here is a deterministic, synchronous transform over in-memory
// strings: no I/O, no shared mutable state, no errors. Keyword extraction is
// lossy, so ExtractKeywords(strings.Join(ExtractKeywords(t), " ")) is not
// expected to equal ExtractKeywords(t).
package ats

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// MaxKeywords caps every extracted keyword set.
const MaxKeywords = 50

// stopWords are dropped from the single-word pass.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"of": {}, "on": {}, "that": {}, "the": {}, "to": {}, "was": {}, "will": {}, "with": {},
}

// SkillPhrases is the fixed catalog of multi-word skills matched literally.
var SkillPhrases = []string{
	"machine learning", "data science", "project management", "cloud computing",
	"web development", "software engineering", "full stack", "front end", "back end",
	"data analysis", "artificial intelligence", "natural language processing",
	"computer vision", "deep learning", "database management", "version control",
	"agile methodology", "scrum master", "business analysis", "quality assurance",
	"user experience", "user interface", "technical writing", "customer service",
	"problem solving", "critical thinking", "time management", "team leadership",
	"strategic planning",
}

var (
	compoundPattern = regexp.MustCompile(`\b[a-z]+(?:[-.][a-z]+)+\b`)
	phrasePattern   = buildPhrasePattern(SkillPhrases)
)

func buildPhrasePattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// IsStopWord reports whether w is dropped by the single-word pass.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// ExtractKeywords turns free text into at most MaxKeywords lowercase terms,
// most frequent first. Terms come from three passes over the lowercased text:
// single words (stop words and tokens of two characters or fewer dropped),
// hyphen/dot compounds such as "full-stack" or "node.js", and the fixed
// SkillPhrases catalog. A term's frequency is its count in the single-word
// pass, or in its own pass when it never occurs as a single word. Ties keep
// first-seen order.
func ExtractKeywords(text string) []string {
	if text == "" {
		return []string{}
	}
	lower := strings.ToLower(text)

	var (
		order []string
		freq  = make(map[string]int)
	)
	observe := func(term string) {
		if _, seen := freq[term]; !seen {
			order = append(order, term)
		}
		freq[term]++
	}

	for _, word := range strings.Fields(normalize(lower)) {
		if len(word) <= 2 || IsStopWord(word) {
			continue
		}
		observe(word)
	}

	// Compounds and phrases only add terms the word pass did not see.
	secondary := make(map[string]int)
	var secondaryOrder []string
	for _, pass := range [][]string{compoundPattern.FindAllString(lower, -1), phrasePattern.FindAllString(lower, -1)} {
		for _, term := range pass {
			if _, inWords := freq[term]; inWords {
				continue
			}
			if _, seen := secondary[term]; !seen {
				secondaryOrder = append(secondaryOrder, term)
			}
			secondary[term]++
		}
	}
	for _, term := range secondaryOrder {
		order = append(order, term)
		freq[term] = secondary[term]
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return freq[b] - freq[a]
	})

	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	return order
}

// normalize replaces every rune other than a-z, 0-9, whitespace and "+#.-" with a space.
func normalize(lower string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '+', r == '#', r == '.', r == '-':
			return r
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, lower)
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
