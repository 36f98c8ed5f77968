// Package router resolves a token vector against a command tree. It handles
// aliases, nested dispatch into subcommands, and ranked fuzzy suggestions for
// unmatched inputs. Routing is pure and synchronous.
package router

import (
	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/parser"
)

// Result is the outcome of one routing attempt. Node is nil when nothing
// matched; Suggestions then carries ranked near-misses and Path the names of
// ancestors that matched before the lookup failed.
type Result struct {
	Node        *command.Node
	Rest        []string
	Suggestions []Suggestion
	Path        []string
}

// Route resolves tokens against the given top-level nodes. The first token
// is matched by name or alias; on a match with children, routing recurses
// into them as long as residual tokens remain and the next token is not
// flag-shaped. A failed nested lookup that produced suggestions bubbles them
// upward with the matched ancestor recorded in Path, rather than silently
// treating the parent as the final match.
func Route(tokens []string, nodes []*command.Node) *Result {
	if len(tokens) == 0 {
		return &Result{}
	}

	head, rest := tokens[0], tokens[1:]
	for _, n := range nodes {
		if n.Name != head && !n.HasAlias(head) {
			continue
		}

		if len(n.Children) > 0 && len(rest) > 0 && !parser.IsFlagToken(rest[0]) {
			sub := Route(rest, n.Children)
			if sub.Node != nil {
				return sub
			}
			if len(sub.Suggestions) > 0 {
				return &Result{
					Suggestions: sub.Suggestions,
					Path:        append([]string{n.Name}, sub.Path...),
				}
			}
		}

		return &Result{Node: n, Rest: rest}
	}

	return &Result{Suggestions: SuggestionsFor(head, nodes)}
}
