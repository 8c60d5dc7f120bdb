package cli

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dgc-labs/dgc/internal/component"
	"github.com/dgc-labs/dgc/internal/project"
	"github.com/dgc-labs/dgc/internal/schema"
	"github.com/dgc-labs/dgc/internal/testutil"
)

func TestComponentTypesOutsideProject(t *testing.T) {
	tests := []struct {
		name    string
		builtin bool
		want    []string
	}{
		{"without builtin", false, []string{"dgc_table.table_io_manager"}},
		{"with builtin", true, []string{
			"dgc.definitions",
			"dgc.noop",
			"dgc.pipes_subprocess_script_collection",
			"dgc_table.table_io_manager",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing, err := componentTypes(t.TempDir(), tt.builtin)
			if err != nil {
				t.Fatalf("componentTypes: %v", err)
			}
			_, keys := decodeObject(t, marshal(t, listing))
			if !reflect.DeepEqual(keys, tt.want) {
				t.Errorf("keys = %v, want %v", keys, tt.want)
			}
		})
	}
}

func TestComponentTypesEntryShape(t *testing.T) {
	listing, err := componentTypes(t.TempDir(), true)
	if err != nil {
		t.Fatal(err)
	}
	obj, _ := decodeObject(t, marshal(t, listing))

	entry := obj["dgc.definitions"].(map[string]any)
	if entry["name"] != "definitions" || entry["package"] != "dgc" {
		t.Errorf("name/package = %v/%v", entry["name"], entry["package"])
	}
	if entry["summary"] != "Wraps an arbitrary set of asset definitions." {
		t.Errorf("summary = %v", entry["summary"])
	}
	if _, ok := entry["component_params_schema"].(map[string]any); !ok {
		t.Errorf("component_params_schema = %T, want object", entry["component_params_schema"])
	}

	noop := obj["dgc.noop"].(map[string]any)
	if noop["component_params_schema"] != nil {
		t.Errorf("noop params schema = %v, want null", noop["component_params_schema"])
	}
}

func TestComponentTypesInsideProject(t *testing.T) {
	root := testutil.TempProjectBar(t)
	addProjectType(t, root, "bar", "my_loader")

	listing, err := componentTypes(root, false)
	if err != nil {
		t.Fatalf("componentTypes: %v", err)
	}
	obj, keys := decodeObject(t, marshal(t, listing))

	want := []string{"dgc_table.table_io_manager", "bar.my_loader"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
	entry := obj["bar.my_loader"].(map[string]any)
	if entry["package"] != "bar" || entry["name"] != "my_loader" {
		t.Errorf("entry = %v", entry)
	}
}

func TestComponentTypesFromSubdirectory(t *testing.T) {
	root := testutil.TempProjectBar(t)
	addProjectType(t, root, "bar", "my_loader")

	listing, err := componentTypes(root+"/bar/components", false)
	if err != nil {
		t.Fatalf("componentTypes: %v", err)
	}
	if _, ok := listing.Get("bar.my_loader"); !ok {
		t.Error("project type should be listed from a subdirectory")
	}
}

func TestComponentTypesUnresolvableRoot(t *testing.T) {
	// A dgc.yaml that is not a code location claims a project but has no root.
	root := testutil.TempProjectBar(t)
	writeProjectFile(t, root, testutil.ProjectFile("bar", false))

	_, err := componentTypes(root, false)
	if !errors.Is(err, project.ErrNotInProject) {
		t.Errorf("err = %v, want ErrNotInProject", err)
	}
}

func TestLocalComponentTypes(t *testing.T) {
	withType := testutil.InjectComponent(t, "basic_loader", testutil.LocalTypeFixture("my_loader"))
	without := testutil.InjectComponent(t, "definitions_only", "")

	listing, err := localComponentTypes([]string{without, withType})
	if err != nil {
		t.Fatalf("localComponentTypes: %v", err)
	}
	obj, keys := decodeObject(t, marshal(t, listing))

	if !reflect.DeepEqual(keys, []string{withType}) {
		t.Fatalf("keys = %v, want only %s", keys, withType)
	}
	perDir := obj[withType].(map[string]any)
	entry, ok := perDir[".my_loader"].(map[string]any)
	if !ok {
		t.Fatalf("missing .my_loader in %v", perDir)
	}
	if entry["name"] != "my_loader" || entry["package"] != withType {
		t.Errorf("entry = %v", entry)
	}
	if entry["summary"] != "Loads a CSV file from the component directory." {
		t.Errorf("summary = %v", entry["summary"])
	}
}

func TestLocalComponentTypesKeepsArgumentOrder(t *testing.T) {
	first := testutil.InjectComponent(t, "basic_loader", testutil.LocalTypeFixture("untyped"))
	second := testutil.InjectComponent(t, "basic_loader", testutil.LocalTypeFixture("my_loader"))

	listing, err := localComponentTypes([]string{second, first})
	if err != nil {
		t.Fatal(err)
	}
	if got := listing.Keys(); !reflect.DeepEqual(got, []string{second, first}) {
		t.Errorf("keys = %v, want [%s %s]", got, second, first)
	}
}

func TestAllComponentsSchema(t *testing.T) {
	root := testutil.TempProjectBar(t)
	addProjectType(t, root, "bar", "my_loader")
	addProjectType(t, root, "bar", "untyped")

	union, err := allComponentsSchema(root, true)
	if err != nil {
		t.Fatalf("allComponentsSchema: %v", err)
	}
	want := []string{
		"dgc.definitions",
		"dgc.pipes_subprocess_script_collection",
		"dgc_table.table_io_manager",
		"bar.my_loader",
	}
	if got := union.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("union keys = %v, want %v", got, want)
	}

	doc, err := union.Document()
	if err != nil {
		t.Fatal(err)
	}
	if doc.Discriminator.PropertyName != "type" {
		t.Errorf("discriminator = %q, want type", doc.Discriminator.PropertyName)
	}
	if doc.Discriminator.Mapping["bar.my_loader"] != schema.MemberRef("bar.my_loader") {
		t.Errorf("mapping = %v", doc.Discriminator.Mapping)
	}
}

func TestAllComponentsSchemaOutsideProject(t *testing.T) {
	_, err := allComponentsSchema(t.TempDir(), false)
	if !errors.Is(err, project.ErrNotInProject) {
		t.Errorf("err = %v, want ErrNotInProject", err)
	}
}

func TestListCommands(t *testing.T) {
	root := testutil.TempProjectBar(t)
	addProjectType(t, root, "bar", "my_loader")

	out, err := executeCommand(t, "list", "component-types")
	if err != nil {
		t.Fatalf("list component-types: %v", err)
	}
	_, keys := decodeObject(t, []byte(out))
	if len(keys) != 2 || keys[1] != "bar.my_loader" {
		t.Errorf("keys = %v", keys)
	}

	out, err = executeCommand(t, "list", "all-components-schema")
	if err != nil {
		t.Fatalf("list all-components-schema: %v", err)
	}
	obj, _ := decodeObject(t, []byte(out))
	if _, ok := obj["oneOf"]; !ok {
		t.Errorf("schema output has no oneOf: %s", out)
	}
}

func TestListLocalComponentTypesRequiresExistingPaths(t *testing.T) {
	if _, err := executeCommand(t, "list", "local-component-types", "/does/not/exist"); err == nil {
		t.Error("expected error for a missing directory")
	}
	if _, err := executeCommand(t, "list", "local-component-types"); err == nil {
		t.Error("expected error without arguments")
	}
}

func TestReservedMetadataFails(t *testing.T) {
	listing := component.NewListing()
	d := component.Descriptor{Name: "x", Metadata: map[string]any{"package": "other"}}
	if err := addKeyed(listing, "acme.x", d); !errors.Is(err, component.ErrReservedMetadataKey) {
		t.Errorf("err = %v, want ErrReservedMetadataKey", err)
	}
}
