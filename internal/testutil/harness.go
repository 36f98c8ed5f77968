// Package testutil provides shared helpers for engine tests: a thread-safe
// output buffer and a harness that assembles an App from an in-test unit
// tree and runs one invocation against it.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/cmdgrid/internal/app"
	"github.com/vk/cmdgrid/internal/handlers"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of one harness run.
type HarnessResult struct {
	Output   string
	ExitCode int
	Err      error
	App      *app.App
}

// WriteUnitTree writes the given relative-path → content file map under a
// fresh temporary root (e.g. "commands/db/migrate.hcl") and returns the root.
func WriteUnitTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// RunEngineTest assembles an App over the given unit tree and runs one
// invocation, capturing output, the exit code, and any composition panic.
func RunEngineTest(t *testing.T, files map[string]string, argv []string, modules ...handlers.Module) *HarnessResult {
	t.Helper()

	root := WriteUnitTree(t, files)
	out := &SafeBuffer{}
	cfg := &app.Config{Root: root, LogFormat: "text", LogLevel: "debug"}

	result := &HarnessResult{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("startup panicked: %v", r)
			}
		}()
		result.App = app.NewApp(out, cfg, nil, modules...)
		result.ExitCode = result.App.Run(context.Background(), argv)
	}()
	result.Output = out.String()
	return result
}
