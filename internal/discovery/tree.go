package discovery

import (
	"errors"
	"strings"

	"github.com/vk/cmdgrid/internal/command"
)

// nodeArena is an explicit node table keyed by normalized path. Building the
// tree through idempotent "create ancestor if absent" operations keeps index
// merges behaving identically whether an index unit is processed before or
// after its sibling children.
type nodeArena struct {
	nodes map[string]*command.Node
	roots []*command.Node
}

func newNodeArena() *nodeArena {
	return &nodeArena{nodes: make(map[string]*command.Node)}
}

// apply merges one loaded unit into the arena. rel is the unit's normalized
// path key (slash-separated, extension stripped). A returned Diagnostic
// means the unit was skipped.
func (a *nodeArena) apply(rel string, lu *loadedUnit) *Diagnostic {
	segs := strings.Split(rel, "/")
	base := segs[len(segs)-1]

	if base == indexName {
		if len(segs) == 1 {
			// There is no ancestor above the root for it to configure.
			return &Diagnostic{Path: lu.path, Err: errors.New("top-level index unit is ignored")}
		}
		mergeUnit(a.ensure(segs[:len(segs)-1]), lu.unit)
		return nil
	}

	if lu.unit.Handler == nil && len(lu.unit.Children) == 0 {
		return &Diagnostic{Path: lu.path, Err: errors.New("unit must expose a handler or children")}
	}

	mergeUnit(a.ensure(segs), lu.unit)
	return nil
}

// ensure returns the node at the given path segments, creating it and any
// missing ancestors as bare named placeholders.
func (a *nodeArena) ensure(segs []string) *command.Node {
	key := strings.Join(segs, "/")
	if n, ok := a.nodes[key]; ok {
		return n
	}

	n := &command.Node{Name: segs[len(segs)-1], Placeholder: true}
	a.nodes[key] = n
	if len(segs) == 1 {
		a.roots = append(a.roots, n)
	} else {
		parent := a.ensure(segs[:len(segs)-1])
		parent.Children = append(parent.Children, n)
	}
	return n
}

// mergeUnit copies a unit's configuration onto a node. Children accumulated
// from sibling units are never replaced, only appended to, which is what
// makes the merge idempotent with respect to processing order.
func mergeUnit(n *command.Node, u *Unit) {
	n.Placeholder = false
	if u.Name != "" {
		n.Name = u.Name
	}
	if u.Description != "" {
		n.Description = u.Description
	}
	if len(u.Aliases) > 0 {
		n.Aliases = append(n.Aliases, u.Aliases...)
	}
	if u.Hidden {
		n.Hidden = true
	}
	if len(u.Args) > 0 {
		n.Args = u.Args
	}
	if len(u.Flags) > 0 {
		n.Flags = u.Flags
	}
	if len(u.Middleware) > 0 {
		n.Middleware = append(n.Middleware, u.Middleware...)
	}
	if u.Handler != nil {
		n.Handler = u.Handler
	}
	for _, child := range u.Children {
		n.Children = append(n.Children, unitToNode(child))
	}
}

// unitToNode converts an inline child unit into a command node.
func unitToNode(u *Unit) *command.Node {
	n := &command.Node{
		Name:        u.Name,
		Description: u.Description,
		Aliases:     u.Aliases,
		Hidden:      u.Hidden,
		Args:        u.Args,
		Flags:       u.Flags,
		Middleware:  u.Middleware,
		Handler:     u.Handler,
	}
	for _, child := range u.Children {
		n.Children = append(n.Children, unitToNode(child))
	}
	return n
}
