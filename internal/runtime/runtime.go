// Package runtime assembles the per-invocation execution context, routes and
// parses the invocation, runs the matched handler through its middleware
// chain, and tears extensions down in reverse setup order. One Runtime
// executes one invocation at a time; trees are immutable during it.
package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/extension"
	"github.com/vk/cmdgrid/internal/parser"
	"github.com/vk/cmdgrid/internal/router"
)

// Sink is the presentation collaborator. It renders lines and suggestion
// lists and takes no part in resolution.
type Sink interface {
	Lines(lines ...string)
	Suggestions(path []string, input string, suggestions []router.Suggestion)
}

// SetupError reports that an extension's setup procedure failed. It is fatal
// to the invocation: no later setup runs and the handler never executes.
type SetupError struct {
	Extension string
	Err       error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("extension %q setup failed: %v", e.Extension, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Options configures a Runtime instance.
type Options struct {
	Out         io.Writer
	Sink        Sink
	Commands    []*command.Node
	Extensions  []*extension.Node // already in dependency order
	Globals     []command.Middleware
	CoreModules map[string]any
}

// Runtime is an assembled instance of core modules, ordered extensions, and
// a command tree, ready to run invocations.
type Runtime struct {
	out        io.Writer
	sink       Sink
	commands   []*command.Node
	extensions []*extension.Node
	globals    []command.Middleware
	core       map[string]any
}

// New creates a Runtime from the given options.
func New(opts Options) *Runtime {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	sink := opts.Sink
	if sink == nil {
		sink = plainSink{out: out}
	}
	return &Runtime{
		out:        out,
		sink:       sink,
		commands:   opts.Commands,
		extensions: opts.Extensions,
		globals:    opts.Globals,
		core:       opts.CoreModules,
	}
}

// Run executes one invocation and returns its exit code: zero on success,
// non-zero on any failure. Extension teardowns always run in exact reverse
// setup order once their setup has succeeded, regardless of how the rest of
// the invocation went.
func (rt *Runtime) Run(ctx context.Context, argv []string) int {
	logger := ctxlog.FromContext(ctx)

	if len(argv) == 0 {
		rt.sink.Lines("no command given")
		return 1
	}

	route := router.Route(argv, rt.commands)
	if route.Node == nil {
		input := argv[0]
		if len(route.Path) > 0 && len(route.Path) < len(argv) {
			input = argv[len(route.Path)]
		}
		logger.Debug("No command matched.", "input", input, "suggestions", len(route.Suggestions))
		rt.sink.Suggestions(route.Path, input, route.Suggestions)
		return 1
	}
	if route.Node.Handler == nil {
		rt.sink.Lines(fmt.Sprintf("command %q is not runnable on its own", route.Node.Name))
		return 1
	}

	exctx, err := NewExecutionContext(rt.core)
	if err != nil {
		logger.Error("Failed to build execution context.", "error", err)
		rt.sink.Lines(err.Error())
		return 1
	}
	logger.Debug("Execution context built.", "invocation", exctx.ID, "command", route.Node.Name)

	var active []*extension.Node
	defer func() {
		rt.teardown(ctx, exctx, active)
	}()

	for _, ext := range rt.extensions {
		if err := ext.Setup(ctx, exctx.Caps); err != nil {
			serr := &SetupError{Extension: ext.Name, Err: err}
			logger.Error("Extension setup failed, aborting invocation.", "extension", ext.Name, "error", err)
			rt.sink.Lines(serr.Error())
			return 1
		}
		active = append(active, ext)
		logger.Debug("Extension setup complete.", "extension", ext.Name)
	}

	parsed, err := parser.Parse(route.Rest, route.Node.Args, route.Node.Flags)
	if err != nil {
		logger.Debug("Invocation failed to parse.", "command", route.Node.Name, "error", err)
		rt.sink.Lines(err.Error())
		return 1
	}

	inv := &command.Invocation{
		ID:    exctx.ID,
		Args:  parsed.Args,
		Flags: parsed.Flags,
		Rest:  parsed.Rest,
		Caps:  exctx.Caps,
		Out:   rt.out,
	}

	// Global middleware outermost, then the node's own, handler innermost.
	handler := route.Node.Handler
	chain := append(append([]command.Middleware{}, rt.globals...), route.Node.Middleware...)
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}

	if err := rt.invoke(ctx, handler, inv); err != nil {
		logger.Error("Command failed.", "command", route.Node.Name, "invocation", inv.ID, "error", err)
		rt.sink.Lines(err.Error())
		return 1
	}
	return 0
}

// invoke runs the wrapped handler, converting a panic into an error so that
// extension teardowns still run.
func (rt *Runtime) invoke(ctx context.Context, handler command.Handler, inv *command.Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command handler panicked: %v", r)
		}
	}()
	return handler(ctx, inv)
}

// teardown unwinds the given extensions in reverse order. A teardown failure
// is recorded but neither suppresses the handler's outcome nor stops the
// remaining teardowns.
func (rt *Runtime) teardown(ctx context.Context, exctx *ExecutionContext, active []*extension.Node) {
	logger := ctxlog.FromContext(ctx)
	for i := len(active) - 1; i >= 0; i-- {
		ext := active[i]
		if ext.Teardown == nil {
			continue
		}
		if err := ext.Teardown(ctx, exctx.Caps); err != nil {
			logger.Error("Extension teardown failed.", "extension", ext.Name, "error", err)
			continue
		}
		logger.Debug("Extension teardown complete.", "extension", ext.Name)
	}
}

// plainSink is the unstyled fallback when no presentation sink is injected.
type plainSink struct {
	out io.Writer
}

func (s plainSink) Lines(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(s.out, line)
	}
}

func (s plainSink) Suggestions(path []string, input string, suggestions []router.Suggestion) {
	full := input
	if len(path) > 0 {
		full = strings.Join(append(append([]string{}, path...), input), " ")
	}
	fmt.Fprintf(s.out, "unknown command %q\n", full)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(s.out, "did you mean:")
	for _, sug := range suggestions {
		fmt.Fprintf(s.out, "  %s\n", sug.Name)
	}
}
