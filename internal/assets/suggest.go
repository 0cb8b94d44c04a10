package assets

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the candidate closest to name, if one is within a length-scaled edit distance.
func Suggest(name string, candidates []string) (string, bool) {
	needle := bareName(name)
	best, bestDist := "", -1
	for _, cand := range candidates {
		c := bareName(cand)
		dist := levenshtein.ComputeDistance(needle, c)
		if dist > levenshteinLimit(len(c)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best, bestDist >= 0
}

// bareName lowercases a block name and drops any Block_ prefix, whatever its case.
func bareName(s string) string {
	return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(blockPrefix))
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
