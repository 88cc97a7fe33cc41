package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// Publication years outside this window are treated as data errors.
const (
	minYear = 1900
	maxYear = 2030
)

// CleanText strips control characters and collapses whitespace runs to a
// single space, trimming the ends.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		// Tab and newline are controls too; they must act as separators,
		// so the whitespace check comes first.
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractYear finds the first plausible 4-digit year in a date string.
// Returns 0 when none is found.
func ExtractYear(date string) int {
	for _, m := range yearPattern.FindAllString(date, -1) {
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if y >= minYear && y <= maxYear {
			return y
		}
	}
	return 0
}

// CanonicalAuthorName normalizes a raw author name to "Last, First" form,
// or a single token when only one name part is present. Case and diacritics
// are preserved; whitespace is canonicalized.
func CanonicalAuthorName(raw string) string {
	name := CleanText(raw)
	if name == "" {
		return ""
	}

	// Already "Last, First": re-join with canonical spacing.
	if last, first, ok := strings.Cut(name, ","); ok {
		last = strings.TrimSpace(last)
		first = strings.TrimSpace(first)
		if first == "" {
			return last
		}
		return last + ", " + first
	}

	parts := strings.Fields(name)
	if len(parts) == 1 {
		return parts[0]
	}
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	return last + ", " + first
}

// Surname returns the family-name component of a canonical author name.
func Surname(canonical string) string {
	if last, _, ok := strings.Cut(canonical, ","); ok {
		return strings.TrimSpace(last)
	}
	return canonical
}
