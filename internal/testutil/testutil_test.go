package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgc-labs/dgc/internal/component"
	"github.com/dgc-labs/dgc/internal/project"
	"go.yaml.in/yaml/v3"
)

func TestProjectFile(t *testing.T) {
	var lib, loc project.ProjectConfig
	if err := yaml.Unmarshal([]byte(ProjectFile("libby", false)), &lib); err != nil {
		t.Fatalf("parsing library project file: %v", err)
	}
	if lib.ProjectName != "libby" || lib.IsCodeLocation || !lib.IsComponentLib {
		t.Errorf("library project = %+v", lib)
	}

	if err := yaml.Unmarshal([]byte(ProjectFile("bar", true)), &loc); err != nil {
		t.Fatalf("parsing code location project file: %v", err)
	}
	if !loc.IsCodeLocation || loc.ModuleName != "bar.definitions" {
		t.Errorf("code location project = %+v", loc)
	}
}

func TestTempProjectBar(t *testing.T) {
	root := TempProjectBar(t)

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	got, err := project.FindEnclosingRoot(cwd)
	if err != nil {
		t.Fatalf("FindEnclosingRoot: %v", err)
	}
	want, _ := filepath.EvalSymlinks(root)
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Errorf("root = %q, want %q", resolved, want)
	}
	for _, dir := range []string{"bar/lib", "bar/components"} {
		if info, err := os.Stat(filepath.Join(root, dir)); err != nil || !info.IsDir() {
			t.Errorf("%s not created", dir)
		}
	}
}

func TestInjectComponent(t *testing.T) {
	dir := InjectComponent(t, "basic_loader", LocalTypeFixture("my_loader"))

	for _, name := range []string{"component.yaml", "orders.csv", "component-type.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s in injected component: %v", name, err)
		}
	}

	types, err := component.FindLocalTypes(dir)
	if err != nil {
		t.Fatalf("FindLocalTypes: %v", err)
	}
	if len(types) != 1 || types[0].Name != "my_loader" {
		t.Errorf("local types = %+v, want my_loader", types)
	}
}

func TestInjectComponentWithoutLocalType(t *testing.T) {
	dir := InjectComponent(t, "definitions_only", "")

	if _, err := os.Stat(filepath.Join(dir, "component-type.yaml")); err == nil {
		t.Error("no local type should be injected")
	}
	if _, err := os.Stat(filepath.Join(dir, "defs", "assets.go.txt")); err != nil {
		t.Errorf("nested fixture files should be copied: %v", err)
	}
}

func TestCreateProjectFromComponents(t *testing.T) {
	root := CreateProjectFromComponents(t, LocalTypeFixture("my_loader"), "basic_loader", "definitions_only")

	pctx, err := project.NewContext(root, component.NewRegistry())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	instances, err := pctx.Instances()
	if err != nil {
		t.Fatalf("Instances: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("got %d instances, want 2", len(instances))
	}
	if instances[0].Name != "basic_loader" || instances[1].Name != "definitions_only" {
		t.Errorf("instances = %+v", instances)
	}
	for _, inst := range instances {
		if _, err := os.Stat(filepath.Join(inst.Dir, "component-type.yaml")); err != nil {
			t.Errorf("%s: local type not injected", inst.Name)
		}
	}
}
