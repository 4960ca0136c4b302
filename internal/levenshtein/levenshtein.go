// Package levenshtein finds the candidate name(s) closest to a typo'd
// identifier, for "did you mean" diagnostics raised when a query
// references a functor the knowledge base has never seen.
package levenshtein

import (
	"fmt"
	"iter"
	"slices"

	"github.com/agnivade/levenshtein"
)

// ClosestStrings returns every candidate whose edit distance from a ties
// for the minimum found, down to minDistance. An empty result means
// nothing within minDistance was close enough to suggest.
func ClosestStrings(minDistance int, a string, candidates iter.Seq[string]) []string {
	closestStrings := []string{}
	for c := range candidates {
		levDist := levenshtein.ComputeDistance(a, c)
		switch {
		case levDist < minDistance:
			closestStrings = []string{c}
			minDistance = levDist
		case levDist == minDistance:
			closestStrings = append(closestStrings, c)
		default:
			continue
		}
	}
	slices.Sort(closestStrings)
	return closestStrings
}

// maxSuggestDistance bounds how different a candidate may be before it
// stops being worth suggesting at all.
const maxSuggestDistance = 3

// SuggestionFor formats a "did you mean: ..." clause for name against
// candidates, or "" if nothing was close enough.
func SuggestionFor(name string, candidates iter.Seq[string]) string {
	suggestions := ClosestStrings(maxSuggestDistance, name, candidates)
	if len(suggestions) == 0 {
		return ""
	}
	if len(suggestions) == 1 {
		return fmt.Sprintf("did you mean %q?", suggestions[0])
	}
	return fmt.Sprintf("did you mean one of %q?", suggestions)
}
