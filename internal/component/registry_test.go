package component

import (
	"errors"
	"reflect"
	"testing"
)

func testLibraries() []Library {
	return []Library{
		{
			Name: "acme",
			Types: []Descriptor{
				{Name: "json_loader", Summary: "JSON"},
				{Name: "csv_loader", Summary: "CSV"},
			},
		},
		{
			Name:    "dgc",
			Builtin: true,
			Types: []Descriptor{
				{Name: "definitions"},
			},
		},
		{
			Name: "a.b",
			Types: []Descriptor{
				{Name: "c"},
			},
		},
	}
}

func TestFromLibrariesSkipsBuiltin(t *testing.T) {
	r, err := FromLibraries(testLibraries(), false)
	if err != nil {
		t.Fatalf("FromLibraries: %v", err)
	}
	want := []string{"a.b.c", "acme.csv_loader", "acme.json_loader"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if r.Has("dgc.definitions") {
		t.Error("builtin library should be excluded")
	}
}

func TestFromLibrariesIncludesBuiltin(t *testing.T) {
	r, err := FromLibraries(testLibraries(), true)
	if err != nil {
		t.Fatalf("FromLibraries: %v", err)
	}
	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}
	d, ok := r.Get("dgc.definitions")
	if !ok {
		t.Fatal("dgc.definitions missing")
	}
	if d.Name != "definitions" {
		t.Errorf("Name = %q, want definitions", d.Name)
	}
}

func TestKeysAreSortedAndStable(t *testing.T) {
	r := NewRegistry()
	for _, k := range []string{"z.last", "a.first", "m.middle"} {
		if err := r.Add(k, Descriptor{}); err != nil {
			t.Fatalf("Add(%q): %v", k, err)
		}
	}
	first := r.Keys()
	second := r.Keys()
	want := []string{"a.first", "m.middle", "z.last"}
	if !reflect.DeepEqual(first, want) || !reflect.DeepEqual(second, want) {
		t.Errorf("Keys() = %v then %v, want %v", first, second, want)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Add("acme.x", Descriptor{}); err != nil {
		t.Fatal(err)
	}
	err := r.Add("acme.x", Descriptor{})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestAddRejectsUnqualifiedKey(t *testing.T) {
	if err := NewRegistry().Add("plain", Descriptor{}); err == nil {
		t.Error("expected error for key without package")
	}
}

func TestFromLibrariesRejectsDottedName(t *testing.T) {
	libs := []Library{{Name: "acme", Types: []Descriptor{{Name: "bad.name"}}}}
	if _, err := FromLibraries(libs, false); err == nil {
		t.Error("expected error for dotted type name")
	}
}

func TestRegisterLibraryPanicsOnDuplicate(t *testing.T) {
	RegisterLibrary(Library{Name: "registry_test_lib"})
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	RegisterLibrary(Library{Name: "registry_test_lib"})
}

func TestLibrariesSnapshotSorted(t *testing.T) {
	RegisterLibrary(Library{Name: "zz_snapshot_lib"})
	RegisterLibrary(Library{Name: "aa_snapshot_lib"})

	libs := Libraries()
	for i := 1; i < len(libs); i++ {
		if libs[i-1].Name > libs[i].Name {
			t.Fatalf("Libraries() not sorted: %q before %q", libs[i-1].Name, libs[i].Name)
		}
	}
}
