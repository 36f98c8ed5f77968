// Package discovery builds a command/extension tree from a directory
// convention: a `commands` subtree scanned recursively and a flat
// `extensions` directory, both resolved relative to a caller-supplied root.
// Units are loaded through an injected Loader so the engine stays agnostic
// to how a unit is written or compiled; a unit that fails to load is
// recorded as a diagnostic and skipped, never aborting the whole scan.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/extension"
	"github.com/vk/cmdgrid/internal/fsutil"
)

const (
	// UnitExtension is the file suffix of loadable unit files.
	UnitExtension = ".hcl"

	// indexName is the reserved unit basename that configures the node at
	// its own directory level instead of creating a child.
	indexName = "index"

	commandsDir   = "commands"
	extensionsDir = "extensions"

	// maxConcurrentLoads bounds how many unit loads are in flight at once.
	maxConcurrentLoads = 8
)

// Unit is the validated shape of one loaded unit. Command units carry a
// handler or children; extension units carry a setup procedure. Discovery
// checks the shape appropriate to the scan that found the unit.
type Unit struct {
	Name        string
	Description string
	Aliases     []string
	Hidden      bool
	Args        []command.ArgSpec
	Flags       []command.FlagSpec
	Middleware  []command.Middleware
	Handler     command.Handler
	Children    []*Unit

	DependsOn []string
	Setup     extension.SetupFunc
	Teardown  extension.TeardownFunc
}

// Loader turns a unit file path into a loaded Unit. Implementations may be
// called concurrently.
type Loader interface {
	Load(ctx context.Context, path string) (*Unit, error)
}

// Diagnostic records one unit that failed to load or had an invalid shape.
// The scan that produced it continued past the failure.
type Diagnostic struct {
	Path string
	Err  error
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("unit %s: %v", d.Path, d.Err)
}

func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// Result is the joined outcome of both scans.
type Result struct {
	Commands    []*command.Node
	Extensions  []*extension.Node
	Diagnostics []*Diagnostic
}

// Discover runs the command and extension scans concurrently (they populate
// disjoint fields) and joins them before returning. A missing subdirectory
// simply yields an empty result for that scan.
func Discover(ctx context.Context, root string, loader Loader) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Discovery started.", "root", root)

	res := &Result{}
	var cmdDiags, extDiags []*Diagnostic

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res.Commands, cmdDiags, err = discoverCommands(gctx, filepath.Join(root, commandsDir), loader)
		return err
	})
	g.Go(func() error {
		var err error
		res.Extensions, extDiags, err = discoverExtensions(gctx, filepath.Join(root, extensionsDir), loader)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Diagnostics = append(cmdDiags, extDiags...)
	logger.Debug("Discovery finished.",
		"commands", len(res.Commands),
		"extensions", len(res.Extensions),
		"diagnostics", len(res.Diagnostics),
	)
	return res, nil
}

// loadedUnit pairs a unit path with its load outcome so concurrent loads can
// be buffered and applied in deterministic path order afterwards.
type loadedUnit struct {
	path string
	unit *Unit
	err  error
}

// loadAll issues unit loads concurrently for I/O efficiency but returns them
// in the same (sorted) order as paths. The tree merge is order-sensitive, so
// results must never be applied in completion order.
func loadAll(ctx context.Context, loader Loader, paths []string) []*loadedUnit {
	out := make([]*loadedUnit, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			unit, err := loader.Load(gctx, path)
			out[i] = &loadedUnit{path: path, unit: unit, err: err}
			return nil
		})
	}
	// Load failures are per-unit diagnostics, so the group never errors.
	_ = g.Wait()
	return out
}

func discoverCommands(ctx context.Context, dir string, loader Loader) ([]*command.Node, []*Diagnostic, error) {
	logger := ctxlog.FromContext(ctx)

	paths, err := fsutil.FindUnitFiles(dir, UnitExtension)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No commands directory found.", "dir", dir)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("scanning commands directory %s: %w", dir, err)
	}

	var diags []*Diagnostic
	arena := newNodeArena()
	for _, lu := range loadAll(ctx, loader, paths) {
		if lu.err != nil {
			logger.Warn("Command unit failed to load.", "path", lu.path, "error", lu.err)
			diags = append(diags, &Diagnostic{Path: lu.path, Err: lu.err})
			continue
		}
		rel, err := unitKey(dir, lu.path)
		if err != nil {
			diags = append(diags, &Diagnostic{Path: lu.path, Err: err})
			continue
		}
		if d := arena.apply(rel, lu); d != nil {
			logger.Warn("Command unit skipped.", "path", d.Path, "error", d.Err)
			diags = append(diags, d)
		}
	}

	return arena.roots, diags, nil
}

func discoverExtensions(ctx context.Context, dir string, loader Loader) ([]*extension.Node, []*Diagnostic, error) {
	logger := ctxlog.FromContext(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No extensions directory found.", "dir", dir)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("scanning extensions directory %s: %w", dir, err)
	}

	// Extension discovery is flat: nested directories are not descended.
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !fsutil.EligibleUnitFile(entry.Name(), UnitExtension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	var nodes []*extension.Node
	var diags []*Diagnostic
	for _, lu := range loadAll(ctx, loader, paths) {
		if lu.err != nil {
			logger.Warn("Extension unit failed to load.", "path", lu.path, "error", lu.err)
			diags = append(diags, &Diagnostic{Path: lu.path, Err: lu.err})
			continue
		}
		if lu.unit.Setup == nil {
			diags = append(diags, &Diagnostic{Path: lu.path, Err: errors.New("extension unit must declare a setup procedure")})
			continue
		}
		name := lu.unit.Name
		if name == "" {
			name = unitBase(lu.path)
		}
		nodes = append(nodes, &extension.Node{
			Name:        name,
			Description: lu.unit.Description,
			DependsOn:   lu.unit.DependsOn,
			Setup:       lu.unit.Setup,
			Teardown:    lu.unit.Teardown,
		})
	}

	return nodes, diags, nil
}

// unitKey normalizes a unit path into its slash-separated segments relative
// to the scan directory, with the file extension stripped.
func unitKey(dir, path string) (string, error) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", fmt.Errorf("normalizing unit path: %w", err)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, UnitExtension), nil
}

func unitBase(path string) string {
	return strings.TrimSuffix(filepath.Base(path), UnitExtension)
}
