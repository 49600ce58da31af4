// Package suggest finds close matches for mistyped names using Levenshtein
// distance.
package suggest

import (
	"sort"
	"strings"
)

// levenshtein calculates the edit distance between two rune slices
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Names returns up to limit candidates close to unknown, best first.
// Matching ignores case; a candidate containing unknown always qualifies.
func Names(unknown string, candidates []string, limit int) []string {
	needle := []rune(strings.ToLower(strings.TrimSpace(unknown)))
	if len(needle) == 0 || limit <= 0 {
		return nil
	}

	type scored struct {
		name  string
		score int
	}
	var matches []scored
	seen := make(map[string]bool)

	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true

		lower := strings.ToLower(c)
		dist := levenshtein(needle, []rune(lower))
		if strings.Contains(lower, string(needle)) {
			dist = min(dist, 1)
		}

		// within 3 edits or half the typed length
		if dist <= max(3, len(needle)/2) {
			matches = append(matches, scored{c, dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})

	var result []string
	for i := 0; i < len(matches) && i < limit; i++ {
		result = append(result, matches[i].name)
	}
	return result
}
