// Package matching resolves free-text title and artist queries to catalog
// tracks using normalized Levenshtein similarity.
package matching

import (
	"strings"
	"unicode"
)

// releaseTags open a trailing " - ..." segment that describes the release
// rather than the song, as in `Channa Mereya - From "Ae Dil Hai Mushkil"`
// or `Tum Hi Ho - Lofi Flip`.
var releaseTags = map[string]struct{}{
	"acoustic":   {},
	"edit":       {},
	"from":       {},
	"live":       {},
	"lofi":       {},
	"mix":        {},
	"ost":        {},
	"radio":      {},
	"recreated":  {},
	"remaster":   {},
	"remastered": {},
	"reprise":    {},
	"slowed":     {},
	"unplugged":  {},
	"version":    {},
}

// droppedTokens never identify a track wherever they appear.
var droppedTokens = map[string]struct{}{
	"clean":      {},
	"deluxe":     {},
	"edition":    {},
	"explicit":   {},
	"feat":       {},
	"featuring":  {},
	"ft":         {},
	"live":       {},
	"lofi":       {},
	"mono":       {},
	"ost":        {},
	"remaster":   {},
	"remastered": {},
	"reprise":    {},
	"stereo":     {},
	"unplugged":  {},
}

// Normalize folds a title or artist for comparison: lowercase, bracketed
// segments and trailing release segments removed, punctuation collapsed,
// and release noise tokens dropped.
func Normalize(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}

	words := tokenize(trimReleaseSuffix(dropBracketed(s)))
	kept := words[:0]
	for _, w := range words {
		if _, drop := droppedTokens[w]; !drop {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// trimReleaseSuffix cuts " - <tag> ..." segments from the end of s while
// the segment starts with a release tag. Empty segments are cut too.
func trimReleaseSuffix(s string) string {
	for {
		i := strings.LastIndex(s, " - ")
		if i < 0 {
			return s
		}
		tail := tokenize(s[i+len(" - "):])
		if len(tail) > 0 {
			if _, ok := releaseTags[tail[0]]; !ok {
				return s
			}
		}
		s = s[:i]
	}
}

// dropBracketed removes (...), [...] and {...} segments, tolerating
// unbalanced closers.
func dropBracketed(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth = max(depth-1, 0)
			out.WriteRune(' ')
			continue
		}
		if depth == 0 {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
