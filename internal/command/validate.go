package command

import "fmt"

// MaxDepth bounds the command tree. Anything deeper is treated as a runaway
// or cyclic structure and rejected outright.
const MaxDepth = 20

// ValidateTree checks structural invariants over a command tree: names and
// aliases must be unique among siblings, and the tree must stay within
// MaxDepth. A node with neither a handler nor children is a configuration
// mistake but not fatal; it is returned as a warning.
func ValidateTree(nodes []*Node) ([]string, error) {
	var warnings []string
	if err := validateLevel(nodes, nil, 1, &warnings); err != nil {
		return nil, err
	}
	return warnings, nil
}

func validateLevel(nodes []*Node, path []string, depth int, warnings *[]string) error {
	if depth > MaxDepth {
		return fmt.Errorf("command tree exceeds maximum depth %d at %q", MaxDepth, joinPath(path))
	}

	seen := make(map[string]string, len(nodes))
	for _, n := range nodes {
		names := append([]string{n.Name}, n.Aliases...)
		for _, name := range names {
			if prev, ok := seen[name]; ok {
				return fmt.Errorf("duplicate command name or alias %q at %q (already used by %q)", name, joinPath(path), prev)
			}
			seen[name] = n.Name
		}

		childPath := append(append([]string{}, path...), n.Name)
		if n.Handler == nil && len(n.Children) == 0 {
			*warnings = append(*warnings, fmt.Sprintf("command %q declares neither a handler nor children and can never run", joinPath(childPath)))
		}

		if len(n.Children) > 0 {
			if err := validateLevel(n.Children, childPath, depth+1, warnings); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	out := path[0]
	for _, p := range path[1:] {
		out += " " + p
	}
	return out
}
