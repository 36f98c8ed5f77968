package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/cmdgrid/internal/capability"
	"github.com/vk/cmdgrid/internal/command"
)

func noopHandler(context.Context, *command.Invocation) error { return nil }

func noopSetup(context.Context, *capability.Registry) error { return nil }

// fakeLoader resolves units by their path relative to the test root,
// slash-separated and extension-stripped (e.g. "commands/db/migrate").
type fakeLoader struct {
	root  string
	units map[string]*Unit
	errs  map[string]error
}

func (f *fakeLoader) Load(_ context.Context, path string) (*Unit, error) {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSuffix(filepath.ToSlash(rel), UnitExtension)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if u, ok := f.units[key]; ok {
		return u, nil
	}
	return nil, errors.New("no such unit")
}

// writeStubs creates empty unit files so the directory scan finds them; the
// fake loader supplies their content.
func writeStubs(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
}

func childNames(n *command.Node) []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Name
	}
	return out
}

func TestDiscover_NestedCommandsShareParent(t *testing.T) {
	root := t.TempDir()
	writeStubs(t, root, "commands/db/migrate.hcl", "commands/db/seed.hcl")
	loader := &fakeLoader{root: root, units: map[string]*Unit{
		"commands/db/migrate": {Handler: noopHandler},
		"commands/db/seed":    {Handler: noopHandler},
	}}

	res, err := Discover(context.Background(), root, loader)
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)

	require.Len(t, res.Commands, 1)
	db := res.Commands[0]
	assert.Equal(t, "db", db.Name)
	assert.True(t, db.Placeholder, "no unit configured the db node itself")
	assert.ElementsMatch(t, []string{"migrate", "seed"}, childNames(db))
}

func TestDiscover_IndexUnitConfiguresAncestor(t *testing.T) {
	root := t.TempDir()
	writeStubs(t, root, "commands/db/index.hcl", "commands/db/migrate.hcl")
	loader := &fakeLoader{root: root, units: map[string]*Unit{
		"commands/db/index":   {Description: "Database operations"},
		"commands/db/migrate": {Handler: noopHandler},
	}}

	res, err := Discover(context.Background(), root, loader)
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)

	require.Len(t, res.Commands, 1)
	db := res.Commands[0]
	assert.Equal(t, "db", db.Name)
	assert.Equal(t, "Database operations", db.Description)
	assert.Equal(t, []string{"migrate"}, childNames(db))
}

func TestDiscover_TopLevelIndexIgnored(t *testing.T) {
	root := t.TempDir()
	writeStubs(t, root, "commands/index.hcl", "commands/status.hcl")
	loader := &fakeLoader{root: root, units: map[string]*Unit{
		"commands/index":  {Description: "never applied"},
		"commands/status": {Handler: noopHandler},
	}}

	res, err := Discover(context.Background(), root, loader)
	require.NoError(t, err)

	require.Len(t, res.Commands, 1)
	assert.Equal(t, "status", res.Commands[0].Name)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Path, "index.hcl")
}

func TestDiscover_MalformedUnitDoesNotBlockOthers(t *testing.T) {
	root := t.TempDir()
	writeStubs(t, root,
		"commands/alpha.hcl",
		"commands/bravo.hcl",
		"commands/broken.hcl",
		"commands/charlie.hcl",
		"commands/delta.hcl",
	)
	loader := &fakeLoader{
		root: root,
		units: map[string]*Unit{
			"commands/alpha":   {Handler: noopHandler},
			"commands/bravo":   {Handler: noopHandler},
			"commands/charlie": {Handler: noopHandler},
			"commands/delta":   {Handler: noopHandler},
		},
		errs: map[string]error{
			"commands/broken": errors.New("syntax error"),
		},
	}

	res, err := Discover(context.Background(), root, loader)
	require.NoError(t, err)

	assert.Len(t, res.Commands, 4)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Path, "broken.hcl")
	assert.Contains(t, res.Diagnostics[0].Error(), "syntax error")
}

func TestDiscover_UnitWithoutHandlerOrChildrenSkipped(t *testing.T) {
	root := t.TempDir()
	writeStubs(t, root, "commands/empty.hcl")
	loader := &fakeLoader{root: root, units: map[string]*Unit{
		"commands/empty": {Description: "nothing to run"},
	}}

	res, err := Discover(context.Background(), root, loader)
	require.NoError(t, err)
	assert.Empty(t, res.Commands)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Error(), "handler or children")
}

func TestDiscover_UnitNameOverridesFileBase(t *testing.T) {
	root := t.TempDir()
	writeStubs(t, root, "commands/gen.hcl")
	loader := &fakeLoader{root: root, units: map[string]*Unit{
		"commands/gen": {Name: "generate", Handler: noopHandler},
	}}

	res, err := Discover(context.Background(), root, loader)
	require.NoError(t, err)
	require.Len(t, res.Commands, 1)
	assert.Equal(t, "generate", res.Commands[0].Name)
}

func TestDiscover_Extensions(t *testing.T) {
	root := t.TempDir()
	writeStubs(t, root, "extensions/config.hcl", "extensions/redis.hcl", "extensions/bad.hcl")
	loader := &fakeLoader{root: root, units: map[string]*Unit{
		"extensions/config": {Setup: noopSetup},
		"extensions/redis":  {Name: "cache", DependsOn: []string{"config"}, Setup: noopSetup},
		"extensions/bad":    {Description: "no setup declared"},
	}}

	res, err := Discover(context.Background(), root, loader)
	require.NoError(t, err)

	require.Len(t, res.Extensions, 2)
	assert.Equal(t, "config", res.Extensions[0].Name) // file base fallback
	assert.Equal(t, "cache", res.Extensions[1].Name)  // declared name wins
	assert.Equal(t, []string{"config"}, res.Extensions[1].DependsOn)

	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Error(), "setup")
}

func TestDiscover_ExtensionScanIsFlat(t *testing.T) {
	root := t.TempDir()
	writeStubs(t, root, "extensions/config.hcl", "extensions/nested/deep.hcl")
	loader := &fakeLoader{root: root, units: map[string]*Unit{
		"extensions/config": {Setup: noopSetup},
	}}

	res, err := Discover(context.Background(), root, loader)
	require.NoError(t, err)
	require.Len(t, res.Extensions, 1)
	assert.Equal(t, "config", res.Extensions[0].Name)
}

func TestDiscover_ExcludedFileNames(t *testing.T) {
	root := t.TempDir()
	writeStubs(t, root,
		"commands/run.hcl",
		"commands/_draft.hcl",
		"commands/.hidden.hcl",
		"commands/run_test.hcl",
		"commands/types.d.hcl",
		"commands/_wip/inner.hcl",
	)
	loader := &fakeLoader{root: root, units: map[string]*Unit{
		"commands/run": {Handler: noopHandler},
	}}

	res, err := Discover(context.Background(), root, loader)
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Commands, 1)
	assert.Equal(t, "run", res.Commands[0].Name)
}

func TestDiscover_MissingDirectoriesAreEmptyResults(t *testing.T) {
	res, err := Discover(context.Background(), t.TempDir(), &fakeLoader{})
	require.NoError(t, err)
	assert.Empty(t, res.Commands)
	assert.Empty(t, res.Extensions)
	assert.Empty(t, res.Diagnostics)
}
