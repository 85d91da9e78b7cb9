package ui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	return runewidth.Truncate(s, maxWidth-suffixWidth, "") + suffix
}

// truncate shortens s to maxWidth cells with an ellipsis.
func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// highlightMatch wraps the first case-insensitive occurrence of query in s
// with render. query must already be lower case. Matching folds s one rune at
// a time so offsets always fall on rune boundaries of s.
func highlightMatch(s, query string, render func(string) string) string {
	if query == "" {
		return s
	}
	for i := range s {
		if n, ok := lowerPrefix(s[i:], query); ok {
			return s[:i] + render(s[i:i+n]) + s[i+n:]
		}
	}
	return s
}

// lowerPrefix reports whether the lower-cased leading runes of s spell query,
// and how many bytes of s they span.
func lowerPrefix(s, query string) (int, bool) {
	n := 0
	for query != "" {
		if n >= len(s) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(s[n:])
		lower := string(unicode.ToLower(r))
		if !strings.HasPrefix(query, lower) {
			return 0, false
		}
		query = query[len(lower):]
		n += size
	}
	return n, true
}
