// Package extension defines independently-authored extension units and the
// topological ordering that makes every declared dependency run its setup
// strictly before its dependents.
package extension

import (
	"context"

	"github.com/vk/cmdgrid/internal/capability"
)

// SetupFunc runs once per invocation before any command handler, free to
// register capabilities on the shared registry.
type SetupFunc func(ctx context.Context, caps *capability.Registry) error

// TeardownFunc runs after the handler in the exact reverse of setup order.
type TeardownFunc func(ctx context.Context, caps *capability.Registry) error

// Node is one extension: a globally unique name, the names of extensions it
// depends on, and its lifecycle procedures. Teardown is optional.
type Node struct {
	Name        string
	Description string
	DependsOn   []string
	Setup       SetupFunc
	Teardown    TeardownFunc
}
