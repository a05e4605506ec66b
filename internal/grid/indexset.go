package grid

import (
	"strconv"
	"strings"
)

// IndexSet is a set of 1-based sequence numbers. A cell is masked iff its
// sequence number is a member.
type IndexSet map[int]bool

// Has reports whether n is in the set.
func (s IndexSet) Has(n int) bool { return s[n] }

// ParseIndexSet parses a free-text index specification like "5, 12, 1-3"
// into a set of integers. The parser is deliberately lenient: malformed
// tokens are skipped so partial or garbage input degrades to "mask
// nothing" instead of failing the whole operation. It never errors and
// returns an empty set for empty input.
//
// Separators: half/full-width commas, the Chinese enumeration comma, and
// any whitespace. Range delimiters: "-", "~", en dash, em dash. Reversed
// ranges normalize ("3-1" means 1..3). Tokens with more than one range
// delimiter are ambiguous and dropped.
func ParseIndexSet(text string) IndexSet {
	set := make(IndexSet)

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ',', '，', '、':
			return true
		}
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '　'
	})

	for _, tok := range tokens {
		tok = normalizeRangeDelims(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}

		if !strings.Contains(tok, "-") {
			if n, err := strconv.Atoi(tok); err == nil {
				set[n] = true
			}
			continue
		}

		parts := strings.Split(tok, "-")
		if len(parts) != 2 {
			continue
		}
		lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		for n := lo; n <= hi; n++ {
			set[n] = true
		}
	}

	return set
}

func normalizeRangeDelims(tok string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '~', '～', '–', '—':
			return '-'
		}
		return r
	}, tok)
}
