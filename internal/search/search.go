// Package search implements forgiving substring-or-typo matching over lists
// of arbitrary items.
//
// An item matches a query when any of its selected fields contains the query
// (case-insensitive), or when any whitespace-separated word of a field is
// within an adaptive edit distance of the query:
//
//	distance(word, query) <= min(threshold, max(len(word), len(query)) / 3)
//
// Lengths are counted in runes.
package search

import (
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultThreshold is the edit-distance ceiling used by callers that do not
// pick their own.
const DefaultThreshold = 3.0

// Field selects one searchable string from an item.
type Field[T any] func(T) string

// Search returns the items matching query, in input order. An empty or
// whitespace-only query returns items unchanged.
func Search[T any](items []T, query string, fields []Field[T], threshold float64) []T {
	q := NormalizeQuery(query)
	if q == "" {
		return items
	}

	out := make([]T, 0)
	values := make([]string, len(fields))
	for _, item := range items {
		for i, f := range fields {
			values[i] = f(item)
		}
		if matchNormalized(values, q, threshold) {
			out = append(out, item)
		}
	}
	return out
}

// Match reports whether any of values matches query.
func Match(values []string, query string, threshold float64) bool {
	q := NormalizeQuery(query)
	if q == "" {
		return true
	}
	return matchNormalized(values, q, threshold)
}

// NormalizeQuery trims and lower-cases a query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// matchNormalized is Match for a query already passed through NormalizeQuery.
func matchNormalized(values []string, q string, threshold float64) bool {
	qLen := utf8.RuneCountInString(q)
	for _, v := range values {
		lv := strings.ToLower(v)
		if strings.Contains(lv, q) {
			return true
		}
		for _, word := range strings.Fields(lv) {
			wLen := utf8.RuneCountInString(word)
			limit := math.Min(threshold, float64(max(wLen, qLen))/3)
			if float64(Levenshtein(word, q)) <= limit {
				return true
			}
		}
	}
	return false
}

// Levenshtein returns the number of single-rune insertions, deletions and
// substitutions needed to turn a into b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)

	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(
				d[i-1][j]+1,
				d[i][j-1]+1,
				d[i-1][j-1]+cost,
			)
		}
	}
	return d[n][m]
}
