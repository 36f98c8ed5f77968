package runtime

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vk/cmdgrid/internal/capability"
)

// ExecutionContext is the per-invocation object shared by core modules and
// extensions. It is built once per run and discarded after teardown; it must
// never be reused across invocations.
type ExecutionContext struct {
	// ID uniquely identifies one invocation, for log correlation.
	ID string

	// Caps is the capability registry extensions populate during setup.
	Caps *capability.Registry
}

// NewExecutionContext builds a fresh context with the injected core modules
// pre-registered as capabilities, untouched by the engine.
func NewExecutionContext(core map[string]any) (*ExecutionContext, error) {
	caps := capability.NewRegistry()
	for key, mod := range core {
		if err := caps.Register(key, mod); err != nil {
			return nil, fmt.Errorf("registering core module: %w", err)
		}
	}
	return &ExecutionContext{
		ID:   uuid.NewString(),
		Caps: caps,
	}, nil
}
