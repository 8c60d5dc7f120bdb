package scaffold

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dgc-labs/dgc/internal/component"
	"github.com/dgc-labs/dgc/internal/manifest"
)

func TestNewScaffoldData(t *testing.T) {
	t.Run("local key by default", func(t *testing.T) {
		d := NewScaffoldData("csv_loader", "")
		if d.TypeKey != ".csv_loader" {
			t.Errorf("TypeKey = %q, want .csv_loader", d.TypeKey)
		}
		if d.Version != "0.1.0" {
			t.Errorf("Version = %q, want 0.1.0", d.Version)
		}
	})

	t.Run("explicit key", func(t *testing.T) {
		d := NewScaffoldData("csv_loader", "acme.csv_loader")
		if d.TypeKey != "acme.csv_loader" {
			t.Errorf("TypeKey = %q, want acme.csv_loader", d.TypeKey)
		}
	})

	t.Run("year is populated", func(t *testing.T) {
		if NewScaffoldData("x", "").Year == 0 {
			t.Error("Year should not be zero")
		}
	})
}

func TestKinds(t *testing.T) {
	want := []string{KindComponent, KindComponentType}
	if got := Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("Kinds() = %v, want %v", got, want)
	}
}

func TestGenerateComponentType(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "lib")

	result, err := Generate(KindComponentType, NewScaffoldData("csv_loader", ""), outDir)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	assertFiles(t, result, []string{"README.md", "component-type.yaml"})
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	content := readGenerated(t, outDir, "component-type.yaml")
	assertContains(t, content, "name: csv_loader")
	assertContains(t, content, "version: 0.1.0")
	assertContains(t, readGenerated(t, outDir, "README.md"), "`.csv_loader`")

	// The generated type is picked up by local discovery.
	types, err := component.FindLocalTypes(outDir)
	if err != nil {
		t.Fatalf("FindLocalTypes: %v", err)
	}
	if len(types) != 1 || types[0].Name != "csv_loader" {
		t.Fatalf("FindLocalTypes = %+v, want csv_loader", types)
	}
	if !types[0].HasSchema() {
		t.Error("generated type should carry a params schema")
	}
}

func TestGenerateComponentTypeBadNameWarns(t *testing.T) {
	outDir := t.TempDir()

	result, err := Generate(KindComponentType, NewScaffoldData("1bad", ""), outDir)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a validation warning for an invalid name")
	}
	if !strings.HasPrefix(result.Warnings[0], "/name") {
		t.Errorf("warning = %q, want it to point at /name", result.Warnings[0])
	}
}

func TestGenerateComponent(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "components", "orders")

	data := NewScaffoldData("csv_loader", "")
	data.Params = map[string]string{"path": "orders.csv", "delimiter": "';'"}
	result, err := Generate(KindComponent, data, outDir)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	assertFiles(t, result, []string{"component.yaml"})
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	m, err := manifest.ParseComponentFile(filepath.Join(outDir, "component.yaml"))
	if err != nil {
		t.Fatalf("ParseComponentFile: %v", err)
	}
	if m.Type != ".csv_loader" {
		t.Errorf("Type = %q, want .csv_loader", m.Type)
	}
	if m.Params["path"] != "orders.csv" || m.Params["delimiter"] != ";" {
		t.Errorf("Params = %v", m.Params)
	}
}

func TestGenerateComponentWithoutParams(t *testing.T) {
	outDir := t.TempDir()

	if _, err := Generate(KindComponent, NewScaffoldData("noop", "dgc.noop"), outDir); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	content := readGenerated(t, outDir, "component.yaml")
	if strings.Contains(content, "params") {
		t.Errorf("component.yaml should not declare params:\n%s", content)
	}
	assertContains(t, content, "type: dgc.noop")
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "component.yaml"), []byte("type: x.y\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Generate(KindComponent, NewScaffoldData("y", "x.y"), outDir)
	if err == nil {
		t.Fatal("expected error when component.yaml already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error = %q, want 'already exists'", err.Error())
	}
}

func TestGenerateSharesDirectoryWithOtherFiles(t *testing.T) {
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "orders.csv"), []byte("id\n1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Generate(KindComponent, NewScaffoldData("y", "x.y"), outDir); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
}

func TestGenerateUnknownKind(t *testing.T) {
	_, err := Generate("pipeline", NewScaffoldData("x", ""), t.TempDir())
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want 'not found'", err.Error())
	}
}

// --- Helpers ---

func assertFiles(t *testing.T, result *Result, want []string) {
	t.Helper()
	if !reflect.DeepEqual(result.Files, want) {
		t.Errorf("Files = %v, want %v", result.Files, want)
	}
	for _, f := range want {
		if _, err := os.Stat(filepath.Join(result.OutputDir, f)); err != nil {
			t.Errorf("expected file %s to exist: %v", f, err)
		}
	}
}

func readGenerated(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

func assertContains(t *testing.T, content, substr string) {
	t.Helper()
	if !strings.Contains(content, substr) {
		t.Errorf("expected content to contain %q, got:\n%s", substr, content)
	}
}
