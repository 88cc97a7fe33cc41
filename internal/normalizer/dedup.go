package normalizer

import (
	"strconv"
	"strings"
)

// DedupKey is a derived signature identifying near-duplicate records during
// ingestion. It is never persisted.
type DedupKey string

// MakeDedupKey computes the signature from a cleaned title, the first
// author's canonical name, and the publication year. Titles are lowercased
// and stripped of punctuation so formatting differences between sources do
// not defeat duplicate detection; diacritics are kept as-is.
func MakeDedupKey(title, firstAuthor string, year int) DedupKey {
	var b strings.Builder
	b.Grow(len(title) + len(firstAuthor) + 8)

	space := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}

	b.WriteByte('|')
	b.WriteString(strings.ToLower(Surname(firstAuthor)))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(year))

	return DedupKey(b.String())
}
