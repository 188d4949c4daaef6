// Package chunk splits long text into sentence-aligned segments that fit a
// generation context budget.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// Separator joins sentences inside a chunk.
const Separator = ". "

// DefaultSize is the chunk budget in characters.
const DefaultSize = 3000

// Sentences splits text on runs of '.', '!' and '?' and drops blank fragments.
// Returned sentences are trimmed and contain no terminator characters.
func Sentences(text string) []string {
	parts := strings.FieldsFunc(text, isTerminator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Split greedily packs sentences into chunks of at most maxSize characters.
// A sentence longer than maxSize becomes its own oversized chunk rather than
// being cut. A non-positive maxSize yields one sentence per chunk.
func Split(text string, maxSize int) []string {
	var (
		chunks  []string
		current strings.Builder
		length  int
	)
	sepLen := utf8.RuneCountInString(Separator)

	for _, sentence := range Sentences(text) {
		n := utf8.RuneCountInString(sentence)
		if length > 0 && length+sepLen+n > maxSize {
			chunks = append(chunks, current.String())
			current.Reset()
			length = 0
		}
		if length > 0 {
			current.WriteString(Separator)
			length += sepLen
		}
		current.WriteString(sentence)
		length += n
	}
	if length > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// Len returns the length of text in characters.
func Len(text string) int {
	return utf8.RuneCountInString(text)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
