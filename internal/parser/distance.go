package parser

import "github.com/agext/levenshtein"

// EditDistance returns the Levenshtein distance between a and b with unit
// insert, delete, and substitute costs. The router uses it to rank near-miss
// command suggestions.
func EditDistance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}
