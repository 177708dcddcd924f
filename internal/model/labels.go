package model

import (
	"strings"
	"unicode"
)

// DefaultLabeler converts a field or resource name into a human-friendly
// label. It splits on underscores, dashes, whitespace, and camelCase
// boundaries, then title-cases each word.
func DefaultLabeler(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	for i, word := range words {
		words[i] = titleCase(word)
	}
	return strings.Join(words, " ")
}

func splitWords(input string) []string {
	var words []string
	var current strings.Builder
	var prev rune

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for i, r := range input {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case i > 0 && camelBoundary(prev, r):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
		prev = r
	}
	flush()
	return words
}

func camelBoundary(prev, r rune) bool {
	if unicode.IsLower(prev) && unicode.IsUpper(r) {
		return true
	}
	if unicode.IsLetter(prev) && unicode.IsDigit(r) {
		return true
	}
	if unicode.IsDigit(prev) && unicode.IsLetter(r) {
		return true
	}
	return false
}

func titleCase(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
