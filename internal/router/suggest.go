package router

import (
	"sort"
	"strings"

	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/parser"
)

// MaxSuggestionDistance is the largest edit distance still offered as a
// "did you mean" candidate.
const MaxSuggestionDistance = 3

// Suggestion is one ranked near-miss candidate for an unmatched input.
type Suggestion struct {
	Name        string
	Description string
	Distance    int
}

// SuggestionsFor ranks the visible candidates among nodes by edit distance
// to input. The distance of a candidate is the minimum over its name and all
// aliases, compared case-insensitively; a case-insensitive prefix
// relationship in either direction short-circuits the distance to zero.
// Candidates beyond MaxSuggestionDistance are dropped. The result is sorted
// ascending by distance, preserving input order on ties. Hidden commands are
// never suggested, though they stay reachable by exact match.
func SuggestionsFor(input string, nodes []*command.Node) []Suggestion {
	lower := strings.ToLower(input)

	var out []Suggestion
	for _, n := range nodes {
		if n.Hidden {
			continue
		}
		dist := candidateDistance(lower, n)
		if dist > MaxSuggestionDistance {
			continue
		}
		out = append(out, Suggestion{Name: n.Name, Description: n.Description, Distance: dist})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

func candidateDistance(lowerInput string, n *command.Node) int {
	best := nameDistance(lowerInput, n.Name)
	for _, alias := range n.Aliases {
		if d := nameDistance(lowerInput, alias); d < best {
			best = d
		}
	}
	return best
}

func nameDistance(lowerInput, candidate string) int {
	lowerCand := strings.ToLower(candidate)
	if strings.HasPrefix(lowerCand, lowerInput) || strings.HasPrefix(lowerInput, lowerCand) {
		return 0
	}
	return parser.EditDistance(lowerInput, lowerCand)
}
