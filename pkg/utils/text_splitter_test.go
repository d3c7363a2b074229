package utils

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mergeChunks rebuilds the covered text by dropping each chunk's overlap with
// what came before it.
func mergeChunks(chunks []string, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	merged := chunks[0]
	for _, c := range chunks[1:] {
		k := min(overlap, len(c), len(merged))
		for ; k > 0; k-- {
			if strings.HasSuffix(merged, c[:k]) {
				break
			}
		}
		merged += c[k:]
	}
	return merged
}

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	return strings.Join(words, " ")
}

func TestSplitTextInvariants(t *testing.T) {
	paragraphs := numberedWords(80) + ".\n\n" + numberedWords(150) + ". " + numberedWords(40) + "\n" + numberedWords(60)

	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{name: "plain words", text: numberedWords(500), size: 1000, overlap: 100},
		{name: "mixed separators", text: paragraphs, size: 300, overlap: 50},
		{name: "no separators", text: strings.Repeat("abcdefghij", 250), size: 1000, overlap: 100},
		{name: "no overlap", text: numberedWords(300), size: 200, overlap: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.size, tt.overlap)
			require.NotEmpty(t, chunks)

			for _, c := range chunks {
				assert.LessOrEqual(t, utf8.RuneCountInString(c), tt.size)
			}
			assert.True(t, strings.HasPrefix(tt.text, chunks[0]))
			assert.True(t, strings.HasSuffix(tt.text, chunks[len(chunks)-1]))

			if tt.name != "no separators" {
				assert.Equal(t, tt.text, mergeChunks(chunks, tt.overlap))
			}
		})
	}
}

func TestSplitTextNoSeparatorsHardCuts(t *testing.T) {
	text := strings.Repeat("abcdefghij", 250)

	chunks := SplitText(text, 1000, 100)

	require.Len(t, chunks, 3)
	assert.Equal(t, text[:1000], chunks[0])
	assert.Equal(t, text[900:1900], chunks[1])
	assert.Equal(t, text[1800:], chunks[2])
}

func TestSplitTextPrefersParagraphBreak(t *testing.T) {
	first := strings.Repeat("a", 70) + "\n\n"
	text := first + strings.Repeat("b", 20) + "\n" + strings.Repeat("c", 60)

	chunks := SplitText(text, 100, 10)

	require.NotEmpty(t, chunks)
	assert.Equal(t, first, chunks[0])
}

func TestSplitTextShortInput(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitText("short", 1000, 100))
	assert.Nil(t, SplitText("", 1000, 100))
}

func TestSplitTextCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 25)

	chunks := SplitText(text, 10, 2)

	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\n b\t\tc  "))
	assert.Equal(t, "", CleanText("\n\t "))
}
