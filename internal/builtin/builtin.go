// Package builtin registers the component types that ship with dgc itself.
// They are only discovered when --builtin-component-lib is set.
package builtin

import "github.com/dgc-labs/dgc/internal/component"

// LibraryName is the package segment of every built-in key.
const LibraryName = "dgc"

// DefinitionsParams configures the definitions component.
type DefinitionsParams struct {
	DefinitionsPath string `json:"definitions_path,omitempty" jsonschema:"description=Path to a file exporting asset definitions, relative to the component directory"`
}

// Script is one entry of a subprocess script collection.
type Script struct {
	Path   string   `json:"path" jsonschema:"description=Script path relative to the component directory"`
	Assets []string `json:"assets,omitempty" jsonschema:"description=Asset keys produced by the script"`
}

// ScriptCollectionParams configures the pipes_subprocess_script_collection component.
type ScriptCollectionParams struct {
	Scripts []Script `json:"scripts,omitempty"`
}

// ScriptScaffoldParams are accepted by `dgc scaffold component` for script collections.
type ScriptScaffoldParams struct {
	Script string `json:"script,omitempty" jsonschema:"description=Name of an initial script to create"`
}

// Types returns the built-in component types.
func Types() []component.Descriptor {
	return []component.Descriptor{
		{
			Name:        "definitions",
			Summary:     "Wraps an arbitrary set of asset definitions.",
			Description: "Loads asset definitions from a single file so they can be placed in a components directory.",
			Params:      DefinitionsParams{},
		},
		{
			Name:           "pipes_subprocess_script_collection",
			Summary:        "Runs a set of scripts as subprocesses.",
			Description:    "Each script is executed in its own subprocess and reports the assets it materializes.",
			Params:         ScriptCollectionParams{},
			ScaffoldParams: ScriptScaffoldParams{},
		},
		{
			Name:    "noop",
			Summary: "A component type that takes no params.",
		},
	}
}

func init() {
	component.RegisterLibrary(component.Library{
		Name:    LibraryName,
		Builtin: true,
		Types:   Types(),
	})
}
