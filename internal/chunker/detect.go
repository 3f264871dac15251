package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

// maxKeywords bounds keyword extraction per chunk.
const maxKeywords = 10

// maxTrackedHeadings bounds the rolling heading window for flowed formats.
const maxTrackedHeadings = 3

// codeMarkers are substrings whose density suggests source code.
var codeMarkers = []string{
	"func ", "def ", "class ", "import ", "return ", "#include",
	"};", "();", "=>", "!=", "==", "&&", "||", "</", "/>",
}

// acronymPattern matches 2-6 letter all-caps tokens (GDPR, SLA, AES).
var acronymPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,5}\b`)

// markdownHeadingPattern matches ATX-style markdown headings.
var markdownHeadingPattern = regexp.MustCompile(`^#{1,6}\s+\S`)

// isHeading reports whether a paragraph looks like a heading: a short
// single line without terminal punctuation, either markdown-marked,
// ALL-CAPS, or Title-Case.
func isHeading(paragraph string) bool {
	p := trimOuterSpace(paragraph)
	if p == "" || strings.Contains(p, "\n") {
		return false
	}
	if markdownHeadingPattern.MatchString(p) {
		return true
	}
	if len(p) > 80 {
		return false
	}
	if strings.ContainsAny(string(p[len(p)-1]), ".!?,;:") {
		return false
	}

	words := strings.Fields(p)
	if len(words) == 0 || len(words) > 10 {
		return false
	}
	if isAllCaps(p) {
		return true
	}
	return isTitleCase(words)
}

// headingText strips markdown markers from a heading paragraph.
func headingText(paragraph string) string {
	p := trimOuterSpace(paragraph)
	return trimOuterSpace(strings.TrimLeft(p, "#"))
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// isTitleCase reports whether most words start with an uppercase letter.
// Short connective words (of, and, the) are ignored.
func isTitleCase(words []string) bool {
	capped := 0
	counted := 0
	for _, w := range words {
		r := []rune(w)
		if len(r) <= 3 && counted > 0 {
			continue
		}
		counted++
		if unicode.IsUpper(r[0]) {
			capped++
		}
	}
	return counted > 0 && capped == counted
}

// hasCode reports whether text contains enough code markers to flag it.
func hasCode(text string) bool {
	hits := 0
	for _, marker := range codeMarkers {
		hits += strings.Count(text, marker)
		if hits >= 3 {
			return true
		}
	}
	// Fenced blocks are a definitive signal.
	return strings.Contains(text, "```")
}

// hasTableMarkers reports whether text looks like serialized rows.
func hasTableMarkers(text string) bool {
	pipeLines := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.Count(line, "|") >= 2 || strings.Count(line, "\t") >= 2 {
			pipeLines++
			if pipeLines >= 2 {
				return true
			}
		}
	}
	return false
}

// extractKeywords pulls capitalized tokens and acronyms from text,
// deduplicated in order of first appearance. Approximate by design.
func extractKeywords(text string) []string {
	seen := make(map[string]bool)
	var keywords []string

	add := func(k string) {
		if len(keywords) >= maxKeywords || seen[k] {
			return
		}
		seen[k] = true
		keywords = append(keywords, k)
	}

	// Acronyms first: they are the strongest lexical signal.
	for _, m := range acronymPattern.FindAllString(text, -1) {
		add(m)
		if len(keywords) >= maxKeywords {
			return keywords
		}
	}

	// Capitalized multi-letter tokens that are not sentence starts.
	prevEndedSentence := true
	for _, tok := range strings.Fields(text) {
		word := strings.TrimFunc(tok, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if word == "" {
			continue
		}
		r := []rune(word)
		if !prevEndedSentence && len(r) >= 4 && unicode.IsUpper(r[0]) && !isAllCaps(word) {
			add(word)
		}
		last := tok[len(tok)-1]
		prevEndedSentence = strings.IndexByte(sentenceTerminators, last) >= 0
		if len(keywords) >= maxKeywords {
			break
		}
	}

	return keywords
}
