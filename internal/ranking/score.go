// Package ranking scores catalog actions against a free-text query.
//
// A query containing '*' or '?' is a case-insensitive glob and scores 95 or 0.
// Any other query scores 100 on equality, 90 on substring and otherwise the
// fuzzy partial ratio of the query against the value.
package ranking

import (
	"math"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Score levels.
const (
	ScoreExact     = 100
	ScoreWildcard  = 95
	ScoreSubstring = 90
)

// IsWildcard reports whether q uses glob syntax.
func IsWildcard(q string) bool {
	return strings.ContainsAny(q, "*?")
}

// Query is a compiled search query. The zero value matches nothing.
type Query struct {
	raw   string
	lower string
	glob  *regexp.Regexp
}

// Compile prepares q for scoring many values.
func Compile(q string) *Query {
	query := &Query{raw: q, lower: strings.ToLower(q)}
	if IsWildcard(q) {
		query.glob = compileGlob(query.lower)
	}
	return query
}

// String returns the query as given.
func (q *Query) String() string { return q.raw }

// Score returns the relevance of value in [0, 100]. Empty values score 0.
func (q *Query) Score(value string) int {
	if value == "" {
		return 0
	}
	v := strings.ToLower(value)

	if q.glob != nil {
		if q.glob.MatchString(v) {
			return ScoreWildcard
		}
		return 0
	}

	if q.lower == v {
		return ScoreExact
	}
	if strings.Contains(v, q.lower) {
		return ScoreSubstring
	}
	return PartialRatio(q.lower, v)
}

// Score is Compile(query).Score(value).
func Score(query, value string) int {
	return Compile(query).Score(value)
}

// compileGlob turns a glob into an anchored regexp. '*' matches any run of
// runes including '/' and newlines, '?' exactly one rune. Everything else is literal.
func compileGlob(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}

// PartialRatio is the best similarity, 0 to 100, between the shorter string
// and any equally long window of the longer one. Windows are aligned on the
// matching blocks of a sequence match over runes.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	shorter, longer := splitRunes(a), splitRunes(b)
	if len(shorter) == 0 || len(longer) == 0 {
		return 0
	}
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	var best float64
	for _, block := range difflib.NewMatcher(shorter, longer).GetMatchingBlocks() {
		start := max(block.B-block.A, 0)
		end := min(start+len(shorter), len(longer))
		if start > end {
			start = end
		}
		r := difflib.NewMatcher(shorter, longer[start:end]).Ratio()
		if r > 0.995 {
			return 100
		}
		best = max(best, r)
	}
	return int(math.RoundToEven(100 * best))
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
