package core

import (
	"strings"
	"unicode"
)

// DefaultMatchThreshold is the largest percentage difference still accepted
// as a reconciliation match.
const DefaultMatchThreshold = 0.4

// LevenshteinDistance is the classic edit distance between two strings:
// insertions, deletions and substitutions each cost 1. Computed over runes
// so multi-byte characters count as single edits.
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// PercentageDifference normalizes the edit distance by the longer string's
// length, yielding a value in [0, 1]. Two empty strings differ by 0.
func PercentageDifference(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	return float64(LevenshteinDistance(a, b)) / float64(longest)
}

// ClosestMatch scores every option against the query and returns the best
// one. Casing and whitespace never affect the comparison. Ties go to the
// earlier option. The second return is false when no option scores above
// zero or the best option's difference exceeds the threshold.
func ClosestMatch[T any](query string, options []T, key func(T) string, threshold float64) (T, bool) {
	var best T
	if len(options) == 0 {
		return best, false
	}

	q := normalizeForMatch(query)
	bestDiff := -1.0
	for _, opt := range options {
		diff := PercentageDifference(q, normalizeForMatch(key(opt)))
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			best = opt
		}
	}

	score := 1 - bestDiff
	if score <= 0 || bestDiff > threshold {
		var zero T
		return zero, false
	}
	return best, true
}

func normalizeForMatch(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
