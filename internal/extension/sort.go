package extension

import (
	"fmt"
	"strings"
)

// CycleError reports that the dependency graph could not be fully ordered.
// Names lists every extension left unresolved when the worklist drained.
type CycleError struct {
	Names []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle among extensions: %s", strings.Join(e.Names, ", "))
}

// Sort orders extensions so that every dependency precedes its dependents,
// using Kahn's worklist algorithm. The worklist is a FIFO queue seeded in
// input order, so a list that is already validly ordered comes back
// unchanged. If the worklist drains before every extension is emitted, the
// remainder forms a cycle and a *CycleError naming all of them is returned;
// no partial ordering is ever returned on failure.
func Sort(nodes []*Node) ([]*Node, error) {
	byName := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		if _, exists := byName[n.Name]; exists {
			return nil, fmt.Errorf("duplicate extension name %q", n.Name)
		}
		byName[n.Name] = n
	}

	pending := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		pending[n.Name] = len(n.DependsOn)
		for _, dep := range n.DependsOn {
			if _, known := byName[dep]; !known {
				return nil, fmt.Errorf("extension %q depends on unknown extension %q", n.Name, dep)
			}
			dependents[dep] = append(dependents[dep], n.Name)
		}
	}

	var queue []string
	for _, n := range nodes {
		if pending[n.Name] == 0 {
			queue = append(queue, n.Name)
		}
	}

	ordered := make([]*Node, 0, len(nodes))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		ordered = append(ordered, byName[name])

		for _, dep := range dependents[name] {
			pending[dep]--
			if pending[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(ordered) != len(nodes) {
		emitted := make(map[string]bool, len(ordered))
		for _, n := range ordered {
			emitted[n.Name] = true
		}
		var unresolved []string
		for _, n := range nodes {
			if !emitted[n.Name] {
				unresolved = append(unresolved, n.Name)
			}
		}
		return nil, &CycleError{Names: unresolved}
	}

	return ordered, nil
}
