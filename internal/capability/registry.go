// Package capability implements the shared capability registry that core
// modules and extensions populate during one invocation. Registration is
// purely additive; nothing is ever removed, and consumers look up only the
// keys they declare a need for.
package capability

import (
	"fmt"
	"sort"
)

// Registry maps capability keys to their implementations. A Registry is
// built once per invocation and must not be reused across invocations.
type Registry struct {
	caps map[string]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]any)}
}

// Register adds a capability under the given key. Two independent extensions
// claiming the same key is a composition mistake, so a duplicate key is an
// error rather than a silent overwrite.
func (r *Registry) Register(key string, impl any) error {
	if _, exists := r.caps[key]; exists {
		return fmt.Errorf("capability %q is already registered", key)
	}
	r.caps[key] = impl
	return nil
}

// Lookup returns the capability registered under key, if any.
func (r *Registry) Lookup(key string) (any, bool) {
	impl, ok := r.caps[key]
	return impl, ok
}

// MustLookup returns the capability registered under key and panics if it is
// absent. Use it only for capabilities the caller's own setup guarantees.
func (r *Registry) MustLookup(key string) any {
	impl, ok := r.caps[key]
	if !ok {
		panic(fmt.Sprintf("capability %q is not registered", key))
	}
	return impl
}

// Keys returns all registered capability keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.caps))
	for k := range r.caps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
