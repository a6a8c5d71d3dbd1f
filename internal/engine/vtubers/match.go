package vtubers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Confidence constants per match kind, strictly ordered
// exact > contains > word > partial_word > prefix > none.
const (
	confExact       = 1.0
	confContains    = 0.9
	confWord        = 0.75
	confPartialWord = 0.6
	confPrefix      = 0.5
)

// minTokenLen guards partial-word matching against trivial hits
// ("ai" matching half the platform).
const minTokenLen = 3

// prefixLen is the shared leading-rune count required for a prefix match.
const prefixLen = 4

// deaccent decomposes and strips combining marks, so "Héllo" folds to "Hello".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases, strips diacritics and punctuation, and
// collapses whitespace. Applied identically to query and candidate name
// before any comparison.
func NormalizeName(s string) string {
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	var b strings.Builder
	prevSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevSpace = false
		case !prevSpace:
			b.WriteByte(' ')
			prevSpace = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// MatchName compares a candidate's display name against the query and
// returns a confidence plus the kind of match that produced it.
// Strategies are tried in priority order; the first hit wins. Pure and
// total: empty input on either side yields MatchNone.
func MatchName(query, name string) (float64, MatchKind) {
	q := NormalizeName(query)
	n := NormalizeName(name)
	if q == "" || n == "" {
		return 0, MatchNone
	}

	if q == n {
		return confExact, MatchExact
	}
	// Space-stripped forms so "gawr gura" still hits inside "gawrguraclips".
	qc := strings.ReplaceAll(q, " ", "")
	nc := strings.ReplaceAll(n, " ", "")
	if strings.Contains(nc, qc) || strings.Contains(qc, nc) {
		return confContains, MatchContains
	}

	qTokens := strings.Fields(q)
	nTokens := strings.Fields(n)
	if allWordsIn(qTokens, nTokens) || allWordsIn(nTokens, qTokens) {
		return confWord, MatchWord
	}
	if partialWordHit(qTokens, nTokens) {
		return confPartialWord, MatchPartialWord
	}
	if sharedPrefix(q, n) {
		return confPrefix, MatchPrefix
	}
	return 0, MatchNone
}

// allWordsIn reports whether every token of want appears as a whole
// word in have.
func allWordsIn(want, have []string) bool {
	if len(want) == 0 {
		return false
	}
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	for _, t := range want {
		if !set[t] {
			return false
		}
	}
	return true
}

// partialWordHit reports whether any query token is a substring of any
// name token (or vice versa). Tokens shorter than minTokenLen are
// ignored on both sides.
func partialWordHit(qTokens, nTokens []string) bool {
	for _, qt := range qTokens {
		if len([]rune(qt)) < minTokenLen {
			continue
		}
		for _, nt := range nTokens {
			if len([]rune(nt)) < minTokenLen {
				continue
			}
			if strings.Contains(nt, qt) || strings.Contains(qt, nt) {
				return true
			}
		}
	}
	return false
}

// sharedPrefix reports whether the two normalized names share their
// first prefixLen runes. A literal starts-with check is already covered
// by the contains strategy, so this catches near-miss name variants
// like "guraaa" vs "gurazilla".
func sharedPrefix(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < prefixLen || len(rb) < prefixLen {
		return false
	}
	return string(ra[:prefixLen]) == string(rb[:prefixLen])
}
