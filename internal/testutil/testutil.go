// Package testutil builds throwaway dgc projects for tests. Every directory
// it creates lives under t.TempDir, so cleanup happens when the test ends,
// pass or fail.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/dgc-labs/dgc/internal/branding"
	"github.com/dgc-labs/dgc/internal/manifest"
)

// ProjectFile renders the contents of a dgc.yaml for a project called name.
func ProjectFile(name string, isCodeLocation bool) string {
	base := fmt.Sprintf("project_name: %s\nis_component_lib: true\n", name)
	if !isCodeLocation {
		return base
	}
	return base + fmt.Sprintf("is_code_location: true\nmodule_name: %s.definitions\n", name)
}

// FixturesDir returns the directory holding the component fixtures.
func FixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata")
}

// ComponentFixture returns the path of a fixture component directory.
func ComponentFixture(name string) string {
	return filepath.Join(FixturesDir(), "components", name)
}

// LocalTypeFixture returns the path of a fixture component-type manifest.
func LocalTypeFixture(name string) string {
	return filepath.Join(FixturesDir(), "local_types", name+manifest.ComponentTypeSuffix)
}

// TempProjectBar creates a code location "bar" with empty lib and components
// directories and changes into its root. It returns the root.
func TempProjectBar(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "bar")
	for _, dir := range []string{"bar/lib", "bar/components"} {
		mkdirAll(t, filepath.Join(root, dir))
	}
	writeFile(t, filepath.Join(root, branding.ProjectFile()), ProjectFile("bar", true))
	writeFile(t, filepath.Join(root, "bar", "definitions.go"), "package bar\n")

	t.Chdir(root)
	return root
}

// InjectComponent copies the fixture component src into a fresh directory.
// When localType is non-empty that manifest is copied in as the component's
// own component-type.yaml.
func InjectComponent(t *testing.T, src, localType string) string {
	t.Helper()
	dst := t.TempDir()
	setupComponent(t, src, dst, localType)
	return dst
}

// CreateProjectFromComponents scaffolds a code location "my_location" with a
// copy of each fixture component under my_location/components/<name>. It
// returns the project root.
func CreateProjectFromComponents(t *testing.T, localType string, srcs ...string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "my_location")
	mkdirAll(t, filepath.Join(root, "my_location", "lib"))
	writeFile(t, filepath.Join(root, branding.ProjectFile()), ProjectFile("my_location", true))

	for _, src := range srcs {
		dst := filepath.Join(root, "my_location", "components", filepath.Base(src))
		setupComponent(t, src, dst, localType)
	}
	return root
}

func setupComponent(t *testing.T, src, dst, localType string) {
	t.Helper()
	if !filepath.IsAbs(src) {
		src = ComponentFixture(src)
	}
	if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
		t.Fatalf("copying component %s: %v", src, err)
	}
	if localType == "" {
		return
	}
	data, err := os.ReadFile(localType)
	if err != nil {
		t.Fatalf("reading local type %s: %v", localType, err)
	}
	writeFile(t, filepath.Join(dst, manifest.ComponentTypeFile), string(data))
}

func mkdirAll(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	mkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
