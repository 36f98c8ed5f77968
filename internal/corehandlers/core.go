// Package corehandlers registers the built-in Go handlers that unit
// manifests may reference by name, so the shipped binary can run a unit tree
// end to end without any embedding application.
package corehandlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/cmdgrid/internal/capability"
	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/handlers"
)

// Core is the built-in handler module.
type Core struct{}

// Register implements handlers.Module.
func (Core) Register(h *handlers.Handlers) {
	h.RegisterCommand("core.echo", echo)
	h.RegisterMiddleware("core.trace", trace)
	h.RegisterSetup("core.env.setup", envSetup)
	h.RegisterTeardown("core.env.teardown", envTeardown)
	h.RegisterValidator("core.nonempty", nonEmpty)
}

// echo writes the invocation's residual tokens back to the output, one line.
func echo(_ context.Context, inv *command.Invocation) error {
	fmt.Fprintln(inv.Out, strings.Join(inv.Rest, " "))
	return nil
}

// trace logs handler start and finish with the invocation ID and elapsed time.
func trace(next command.Handler) command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		logger := ctxlog.FromContext(ctx)
		start := time.Now()
		logger.Debug("Handler starting.", "invocation", inv.ID)
		err := next(ctx, inv)
		logger.Debug("Handler finished.", "invocation", inv.ID, "elapsed", time.Since(start), "error", err)
		return err
	}
}

// EnvCapability is the key under which envSetup registers environment lookup.
const EnvCapability = "core.env"

func envSetup(_ context.Context, caps *capability.Registry) error {
	lookup := func(name string) (string, bool) { return os.LookupEnv(name) }
	return caps.Register(EnvCapability, lookup)
}

func envTeardown(ctx context.Context, _ *capability.Registry) error {
	ctxlog.FromContext(ctx).Debug("Environment capability released.")
	return nil
}

func nonEmpty(v cty.Value) error {
	if v.Type() == cty.String && strings.TrimSpace(v.AsString()) == "" {
		return errors.New("must not be empty")
	}
	return nil
}
