package utils

import (
	"regexp"
	"strings"
)

// DefaultSeparators are tried in order: paragraph, line, sentence, word.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses every whitespace run to a single space.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// SplitText splits text into chunks of at most chunkSize runes, each starting
// overlap runes (or fewer) before the previous one ended. A chunk ends after
// the highest-priority separator found in the back half of its window and
// falls back to a hard cut when there is none. Consecutive chunks always touch
// or overlap, so no character between the first and last chunk is lost.
func SplitText(text string, chunkSize int, overlap int) []string {
	if chunkSize <= 0 || text == "" {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	total := len(runes)
	if total <= chunkSize {
		return []string{text}
	}

	seps := make([][]rune, len(DefaultSeparators))
	for i, sep := range DefaultSeparators {
		seps[i] = []rune(sep)
	}

	// a cut must leave the chunk longer than both half a window and the
	// overlap, otherwise the next start would not advance
	minLen := max(chunkSize/2, overlap+1)

	var chunks []string
	start := 0
	for start < total {
		end := min(start+chunkSize, total)
		cut := end
		if end < total {
			cut = findCut(runes, start, end, minLen, seps)
		}

		chunks = append(chunks, string(runes[start:cut]))
		if cut >= total {
			break
		}

		next := cut - overlap
		// prefer starting the overlap on a word boundary
		for i := next; i < cut; i++ {
			if runes[i] == ' ' && i+1 < cut {
				next = i + 1
				break
			}
		}
		start = next
	}

	return chunks
}

// findCut returns the index just past the last occurrence of the best
// separator inside runes[start+minLen:end], or end.
func findCut(runes []rune, start, end, minLen int, seps [][]rune) int {
	for _, sep := range seps {
		for i := end - len(sep); i >= start+minLen-len(sep) && i >= start; i-- {
			if hasPrefixAt(runes, i, sep) {
				cut := i + len(sep)
				if cut-start >= minLen {
					return cut
				}
			}
		}
	}
	return end
}

func hasPrefixAt(runes []rune, at int, sep []rune) bool {
	if at+len(sep) > len(runes) {
		return false
	}
	for j, r := range sep {
		if runes[at+j] != r {
			return false
		}
	}
	return true
}
