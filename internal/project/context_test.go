package project

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dgc-labs/dgc/internal/component"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestContext(t *testing.T) *Context {
	t.Helper()
	root := t.TempDir()
	if err := InitProject(root, "bar"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "bar", "lib", "zeta", "component-type.yaml"), "name: zeta_type\n")
	writeFile(t, filepath.Join(root, "bar", "lib", "alpha", "component-type.yaml"),
		"name: alpha_type\nparams:\n  type: object\n")

	registry := component.NewRegistry()
	for _, key := range []string{"acme.json_loader", "acme.csv_loader"} {
		if err := registry.Add(key, component.Descriptor{}); err != nil {
			t.Fatal(err)
		}
	}

	ctx, err := NewContext(root, registry)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx
}

func TestListComponentTypesOrder(t *testing.T) {
	ctx := newTestContext(t)

	types, err := ctx.ListComponentTypes()
	if err != nil {
		t.Fatalf("ListComponentTypes: %v", err)
	}
	var keys []string
	for _, kt := range types {
		keys = append(keys, kt.Key)
	}
	want := []string{"acme.csv_loader", "acme.json_loader", "bar.alpha_type", "bar.zeta_type"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
	if !types[2].Descriptor.HasSchema() {
		t.Error("bar.alpha_type should carry its params schema")
	}
}

func TestListComponentTypesShadowing(t *testing.T) {
	ctx := newTestContext(t)
	if err := ctx.Registry.Add("bar.alpha_type", component.Descriptor{}); err != nil {
		t.Fatal(err)
	}

	_, err := ctx.ListComponentTypes()
	if !errors.Is(err, component.ErrDuplicateKey) {
		t.Errorf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestNewContextRejectsComponentLib(t *testing.T) {
	root := t.TempDir()
	if err := SaveProject(root, &ProjectConfig{ProjectName: "lib", IsComponentLib: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewContext(root, nil); err == nil {
		t.Fatal("expected error for a project that is not a code location")
	}
}

func TestInstances(t *testing.T) {
	ctx := newTestContext(t)
	comps := ctx.ComponentsPath()
	writeFile(t, filepath.Join(comps, "b_inst", "component.yaml"), "type: acme.csv_loader\n")
	writeFile(t, filepath.Join(comps, "a_inst", "component.yaml"), "type: .local\n")
	writeFile(t, filepath.Join(comps, "no_file", "README.md"), "nothing here\n")

	instances, err := ctx.Instances()
	if err != nil {
		t.Fatalf("Instances: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("got %d instances, want 2", len(instances))
	}
	if instances[0].Name != "a_inst" || instances[1].Name != "b_inst" {
		t.Errorf("instances = %+v", instances)
	}
	if filepath.Base(instances[0].Path) != "component.yaml" {
		t.Errorf("Path = %q", instances[0].Path)
	}
}
