// Package handlers holds the registries that map unit-declared names onto
// compiled Go functions: command handlers, middleware, extension lifecycle
// procedures, and value validators. Unit files reference these by name only,
// keeping the resolution engine agnostic to how behavior is compiled.
package handlers

import (
	"fmt"
	"log/slog"

	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/extension"
)

// Module is the interface that all core modules must implement to be
// registered.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all registered Go functions for a single application
// instance.
type Handlers struct {
	commands   map[string]command.Handler
	middleware map[string]command.Middleware
	setups     map[string]extension.SetupFunc
	teardowns  map[string]extension.TeardownFunc
	validators map[string]command.ValidateFunc
}

// New creates and initializes an empty Handlers instance.
func New() *Handlers {
	return &Handlers{
		commands:   make(map[string]command.Handler),
		middleware: make(map[string]command.Middleware),
		setups:     make(map[string]extension.SetupFunc),
		teardowns:  make(map[string]extension.TeardownFunc),
		validators: make(map[string]command.ValidateFunc),
	}
}

// RegisterCommand registers a Go function as a command handler.
func (h *Handlers) RegisterCommand(name string, fn command.Handler) {
	if _, exists := h.commands[name]; exists {
		panic(fmt.Sprintf("command handler with name '%s' already registered", name))
	}
	slog.Debug("Registering command handler.", "name", name)
	h.commands[name] = fn
}

// RegisterMiddleware registers a Go function as a middleware.
func (h *Handlers) RegisterMiddleware(name string, fn command.Middleware) {
	if _, exists := h.middleware[name]; exists {
		panic(fmt.Sprintf("middleware with name '%s' already registered", name))
	}
	slog.Debug("Registering middleware.", "name", name)
	h.middleware[name] = fn
}

// RegisterSetup registers a Go function as an extension setup procedure.
func (h *Handlers) RegisterSetup(name string, fn extension.SetupFunc) {
	if _, exists := h.setups[name]; exists {
		panic(fmt.Sprintf("setup procedure with name '%s' already registered", name))
	}
	slog.Debug("Registering setup procedure.", "name", name)
	h.setups[name] = fn
}

// RegisterTeardown registers a Go function as an extension teardown procedure.
func (h *Handlers) RegisterTeardown(name string, fn extension.TeardownFunc) {
	if _, exists := h.teardowns[name]; exists {
		panic(fmt.Sprintf("teardown procedure with name '%s' already registered", name))
	}
	slog.Debug("Registering teardown procedure.", "name", name)
	h.teardowns[name] = fn
}

// RegisterValidator registers a Go function as a value validator.
func (h *Handlers) RegisterValidator(name string, fn command.ValidateFunc) {
	if _, exists := h.validators[name]; exists {
		panic(fmt.Sprintf("validator with name '%s' already registered", name))
	}
	slog.Debug("Registering validator.", "name", name)
	h.validators[name] = fn
}

// Command returns the registered command handler by name.
func (h *Handlers) Command(name string) (command.Handler, bool) {
	fn, ok := h.commands[name]
	return fn, ok
}

// Middleware returns the registered middleware by name.
func (h *Handlers) Middleware(name string) (command.Middleware, bool) {
	fn, ok := h.middleware[name]
	return fn, ok
}

// Setup returns the registered setup procedure by name.
func (h *Handlers) Setup(name string) (extension.SetupFunc, bool) {
	fn, ok := h.setups[name]
	return fn, ok
}

// Teardown returns the registered teardown procedure by name.
func (h *Handlers) Teardown(name string) (extension.TeardownFunc, bool) {
	fn, ok := h.teardowns[name]
	return fn, ok
}

// Validator returns the registered validator by name.
func (h *Handlers) Validator(name string) (command.ValidateFunc, bool) {
	fn, ok := h.validators[name]
	return fn, ok
}
