package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sentenceTerminators end a sentence when followed by whitespace.
const sentenceTerminators = ".!?"

// splitText splits s into pieces of at most max bytes, carrying overlap
// bytes from the end of each piece into the start of the next.
//
// The cut point is chosen by scanning backward from the hard limit for
// the nearest boundary within the trailing half of the window, in
// preference order: paragraph break, sentence end, any whitespace. When
// no boundary exists the piece is hard-cut at the limit (an irreducible
// token run), aligned to a rune start.
func splitText(s string, max, overlap int) []string {
	if max <= 0 || len(s) <= max {
		return []string{s}
	}
	if overlap < 0 {
		overlap = 0
	}
	// Overlap must leave room for forward progress.
	if overlap >= max/2 {
		overlap = max / 4
	}

	var pieces []string
	rest := s
	for len(rest) > max {
		cut := findCut(rest, max)
		pieces = append(pieces, rest[:cut])

		next := cut - overlap
		if next < 1 {
			next = cut
		}
		// Never start mid-rune.
		for next > 0 && !utf8.RuneStart(rest[next]) {
			next--
		}
		rest = rest[next:]
	}
	if len(rest) > 0 {
		pieces = append(pieces, rest)
	}
	return pieces
}

// findCut returns the byte offset to cut s at, scanning backward from
// max for a boundary no earlier than max/2.
func findCut(s string, max int) int {
	window := s[:max]
	floor := max / 2

	// Paragraph break wins outright.
	if i := strings.LastIndex(window, "\n\n"); i >= floor {
		return i + 1 // keep one newline with the leading piece
	}

	// Sentence end: terminator followed by whitespace.
	for i := max - 2; i >= floor; i-- {
		if strings.IndexByte(sentenceTerminators, window[i]) >= 0 && isSpaceByte(window[i+1]) {
			return i + 1
		}
	}

	// Any whitespace.
	for i := max - 1; i >= floor; i-- {
		if isSpaceByte(window[i]) {
			return i + 1
		}
	}

	// Irreducible token run: hard cut at a rune start.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		cut = max
	}
	return cut
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

// countWords returns the number of whitespace-separated tokens.
func countWords(s string) int {
	return len(strings.Fields(s))
}

// countSentences approximates the number of sentences by counting
// terminator runs.
func countSentences(s string) int {
	count := 0
	inRun := false
	for _, r := range s {
		if strings.ContainsRune(sentenceTerminators, r) {
			if !inRun {
				count++
				inRun = true
			}
		} else {
			inRun = false
		}
	}
	if count == 0 && strings.TrimSpace(s) != "" {
		count = 1
	}
	return count
}

// countChars returns the rune length of s.
func countChars(s string) int {
	return utf8.RuneCountInString(s)
}

// trimOuterSpace trims leading/trailing whitespace without touching
// interior structure.
func trimOuterSpace(s string) string {
	return strings.TrimFunc(s, unicode.IsSpace)
}
