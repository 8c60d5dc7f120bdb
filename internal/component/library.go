package component

import (
	"fmt"
	"sort"
	"sync"
)

// Library is a named group of component types. Its Name is the package
// segment of every qualified key it contributes.
type Library struct {
	Name    string
	Builtin bool
	Types   []Descriptor
}

var (
	librariesMu sync.Mutex
	libraries   = make(map[string]Library)
)

// RegisterLibrary makes a library discoverable. It is meant to be called from
// init() and panics if the same library name is registered twice.
func RegisterLibrary(lib Library) {
	librariesMu.Lock()
	defer librariesMu.Unlock()

	if lib.Name == "" {
		panic("component: RegisterLibrary with empty name")
	}
	if _, dup := libraries[lib.Name]; dup {
		panic(fmt.Sprintf("component: RegisterLibrary called twice for %q", lib.Name))
	}
	libraries[lib.Name] = lib
}

// Libraries returns a snapshot of registered libraries sorted by name.
func Libraries() []Library {
	librariesMu.Lock()
	defer librariesMu.Unlock()

	result := make([]Library, 0, len(libraries))
	for _, lib := range libraries {
		result = append(result, lib)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
