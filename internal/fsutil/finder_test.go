package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestFindUnitFiles_RecursiveAndSorted(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"zeta.hcl",
		"db/seed.hcl",
		"db/migrate.hcl",
		"alpha.hcl",
	)

	files, err := FindUnitFiles(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"alpha.hcl",
		"db/migrate.hcl",
		"db/seed.hcl",
		"zeta.hcl",
	}, relPaths(t, root, files))
}

func TestFindUnitFiles_SkipsExcludedNames(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"run.hcl",
		"_draft.hcl",
		".hidden.hcl",
		"run_test.hcl",
		"types.d.hcl",
		"notes.txt",
		"_wip/inner.hcl",
		".git/config.hcl",
		"ok/nested.hcl",
	)

	files, err := FindUnitFiles(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{"ok/nested.hcl", "run.hcl"}, relPaths(t, root, files))
}

func TestFindUnitFiles_MissingRoot(t *testing.T) {
	_, err := FindUnitFiles(filepath.Join(t.TempDir(), "nope"), ".hcl")
	assert.Error(t, err)
}

func TestEligibleUnitFile(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"run.hcl", true},
		{"index.hcl", true},
		{"run.yaml", false},
		{"_draft.hcl", false},
		{".hidden.hcl", false},
		{"run_test.hcl", false},
		{"types.d.hcl", false},
		{"latest.hcl.bak", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EligibleUnitFile(tc.name, ".hcl"), tc.name)
	}
}
