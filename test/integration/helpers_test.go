//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgc-labs/dgc/internal/project"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // HOME, so ~/.dgc never touches the real one
	TableRoot  string // DGC_TABLE_ROOT
	ProjectDir string // Parent of the scaffolded project
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so every dgc operation is sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		TableRoot:  t.TempDir(),
		ProjectDir: t.TempDir(),
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("DGC_TABLE_ROOT", env.TableRoot)
	return env
}

// setupProject initializes a code location called name under env.ProjectDir
// and returns its root.
func setupProject(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	root := filepath.Join(env.ProjectDir, name)
	if err := project.InitProject(root, name); err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	return root
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
