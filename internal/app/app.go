package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/corehandlers"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/discovery"
	"github.com/vk/cmdgrid/internal/extension"
	"github.com/vk/cmdgrid/internal/handlers"
	"github.com/vk/cmdgrid/internal/hclunit"
	"github.com/vk/cmdgrid/internal/render"
	"github.com/vk/cmdgrid/internal/runtime"
)

// coreModules are registered when the caller does not supply its own set.
var coreModules = []handlers.Module{corehandlers.Core{}}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	handlers *handlers.Handlers
	runtime  *runtime.Runtime
	tree     []*command.Node
	diags    []*discovery.Diagnostic
}

// NewApp is the constructor for the main application. It returns a fully
// assembled App: units discovered, the command tree validated, and the
// extensions ordered by dependency. Composition failures (an unreadable
// root, an invalid tree, a dependency cycle) are fatal and panic; the
// entrypoint recovers them into a clean exit.
func NewApp(outW io.Writer, cfg *Config, loader discovery.Loader, modules ...handlers.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	hndls := handlers.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(hndls)
	}
	logger.Debug("All Go handler modules registered.", "count", len(modules))

	if loader == nil {
		loader = hclunit.NewLoader(hndls)
	}

	disc, err := discovery.Discover(ctx, cfg.Root, loader)
	if err != nil {
		// A failure to scan the unit tree is a fatal startup error.
		panic(fmt.Errorf("failed to discover units: %w", err))
	}
	for _, d := range disc.Diagnostics {
		logger.Warn("Unit skipped during discovery.", "path", d.Path, "error", d.Err)
	}

	warnings, err := command.ValidateTree(disc.Commands)
	if err != nil {
		panic(fmt.Errorf("invalid command tree: %w", err))
	}
	for _, w := range warnings {
		logger.Warn(w)
	}
	logger.Debug("Command tree validation passed.", "top_level", len(disc.Commands))

	ordered, err := extension.Sort(disc.Extensions)
	if err != nil {
		// A cycle means no safe setup order exists; no partial composition
		// is attempted.
		panic(fmt.Errorf("failed to order extensions: %w", err))
	}
	logger.Debug("Extensions ordered by dependency.", "count", len(ordered))

	rt := runtime.New(runtime.Options{
		Out:        outW,
		Sink:       render.NewConsole(outW),
		Commands:   disc.Commands,
		Extensions: ordered,
		CoreModules: map[string]any{
			"logger": logger,
		},
	})

	return &App{
		outW:     outW,
		logger:   logger,
		handlers: hndls,
		runtime:  rt,
		tree:     disc.Commands,
		diags:    disc.Diagnostics,
	}
}

// Run executes one invocation against the assembled instance and returns its
// exit code.
func (a *App) Run(ctx context.Context, argv []string) int {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	return a.runtime.Run(ctx, argv)
}

// Commands returns the discovered command tree. This is primarily for testing.
func (a *App) Commands() []*command.Node {
	return a.tree
}

// Diagnostics returns the per-unit discovery diagnostics. This is primarily
// for testing.
func (a *App) Diagnostics() []*discovery.Diagnostic {
	return a.diags
}
