// Package safety implements a best-effort keyword gate over assistant
// replies. It is a fixed substring blocklist, not a content-safety
// classifier.
package safety

import (
	"strings"
)

// DefaultFallback replaces a reply when a blocked keyword is found
const DefaultFallback = "Let's talk about something else! I'm here to help you learn about technology, science and school subjects. What would you like to explore? 🚀"

// DefaultKeywords is the static blocklist checked against replies
var DefaultKeywords = []string{
	"kill", "death", "suicide", "drugs", "alcohol", "sex", "porn",
	"hate", "racist", "terrorist", "bomb", "gun", "weapon",
}

// Filter substitutes a fixed fallback string for any text containing
// one of its keywords
type Filter struct {
	keywords []string
	fallback string
}

// NewFilter creates a filter with the given keyword list and fallback.
// Keywords are matched case-insensitively as substrings.
func NewFilter(keywords []string, fallback string) *Filter {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Filter{keywords: lowered, fallback: fallback}
}

// NewDefaultFilter creates a filter with the built-in blocklist
func NewDefaultFilter() *Filter {
	return NewFilter(DefaultKeywords, DefaultFallback)
}

// Apply returns the text unchanged, or the fallback string and true
// when a keyword matches. The first match short-circuits.
func (f *Filter) Apply(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, kw := range f.keywords {
		if strings.Contains(lowered, kw) {
			return f.fallback, true
		}
	}
	return text, false
}
