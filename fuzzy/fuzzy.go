// Package fuzzy provides "did you mean" suggestions for unresolved task,
// dependency and alias names, used by the resolver's error messages.
package fuzzy

import "strings"

// Match is one candidate scored against a query.
type Match struct {
	Candidate string
	Score     int
}

// Suggest returns the best-matching candidates for query, ranked highest
// score first, capped at limit. A candidate scores by: exact
// case-insensitive match, prefix match, substring match, or shared-prefix
// length, in that preference order - cheap enough for the small candidate
// sets (task and alias names) the resolver deals with.
func Suggest(query string, candidates []string, limit int) []Match {
	q := strings.ToLower(query)

	var matches []Match
	for _, c := range candidates {
		if score, ok := score(q, strings.ToLower(c)); ok {
			matches = append(matches, Match{Candidate: c, Score: score})
		}
	}

	for i := 0; i < len(matches); i++ {
		for j := i + 1; j < len(matches); j++ {
			if matches[j].Score > matches[i].Score {
				matches[i], matches[j] = matches[j], matches[i]
			}
		}
	}

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// SuggestOne returns the single best candidate, or "" if none score.
func SuggestOne(query string, candidates []string) string {
	m := Suggest(query, candidates, 1)
	if len(m) == 0 {
		return ""
	}
	return m[0].Candidate
}

func score(q, c string) (int, bool) {
	switch {
	case q == c:
		return 100, true
	case strings.HasPrefix(c, q) || strings.HasPrefix(q, c):
		return 80, true
	case strings.Contains(c, q) || strings.Contains(q, c):
		return 60, true
	default:
		n := commonPrefixLen(q, c)
		if n >= 2 {
			return 40 + n, true
		}
		return 0, false
	}
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
