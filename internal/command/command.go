package command

import (
	"context"
	"fmt"
	"io"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/cmdgrid/internal/capability"
)

// Node is a single routable command in the tree. A node with children and no
// handler of its own is a pure grouping node.
type Node struct {
	Name        string
	Description string
	Aliases     []string
	Hidden      bool
	Args        []ArgSpec
	Flags       []FlagSpec
	Middleware  []Middleware
	Handler     Handler
	Children    []*Node

	// Placeholder marks a node synthesized from a directory segment during
	// discovery, before any unit has supplied its configuration.
	Placeholder bool
}

// HasAlias reports whether name is one of the node's declared aliases.
func (n *Node) HasAlias(name string) bool {
	for _, a := range n.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

// ValidateFunc checks a resolved value and returns a reason error on failure.
type ValidateFunc func(v cty.Value) error

// ArgSpec declares a positional argument of a command.
type ArgSpec struct {
	Name     string
	Type     cty.Type
	Required bool
	Choices  []cty.Value
	Default  cty.Value
	Validate ValidateFunc
}

// FlagSpec declares a flag of a command. Alias is an optional
// single-character short form.
type FlagSpec struct {
	Name     string
	Alias    string
	Type     cty.Type
	Required bool
	Choices  []cty.Value
	Default  cty.Value
	Validate ValidateFunc
}

// ParseTypeTag maps a declared unit type tag onto the cty type that carries
// its values at runtime.
func ParseTypeTag(tag string) (cty.Type, error) {
	switch tag {
	case "text":
		return cty.String, nil
	case "number":
		return cty.Number, nil
	case "boolean":
		return cty.Bool, nil
	case "text-list":
		return cty.List(cty.String), nil
	case "number-list":
		return cty.List(cty.Number), nil
	}
	return cty.NilType, fmt.Errorf("unknown type tag %q", tag)
}

// Invocation carries everything a handler sees for one run: the typed
// arguments and flags, leftover raw tokens, the shared capability registry,
// and the writer command output goes to.
type Invocation struct {
	ID    string
	Args  map[string]cty.Value
	Flags map[string]cty.Value
	Rest  []string
	Caps  *capability.Registry
	Out   io.Writer
}

// Handler is the innermost unit of command behavior.
type Handler func(ctx context.Context, inv *Invocation) error

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(next Handler) Handler
