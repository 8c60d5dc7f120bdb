package manifest

// ComponentTypeManifest declares a project-local component type.
type ComponentTypeManifest struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`
	Summary     string `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Requires is a semver constraint on the CLI version, e.g. ">= 0.3".
	Requires string `yaml:"requires,omitempty" json:"requires,omitempty"`

	// Params is an inline JSON Schema for the component's params.
	Params map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty"`
	// ParamsSchemaFile points at a JSON Schema file relative to the manifest.
	ParamsSchemaFile string `yaml:"params_schema_file,omitempty" json:"params_schema_file,omitempty"`

	ScaffoldParams map[string]interface{} `yaml:"scaffold_params,omitempty" json:"scaffold_params,omitempty"`
	Metadata       map[string]interface{} `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// ComponentFile is a component.yaml instance file.
type ComponentFile struct {
	Type   string                 `yaml:"type" json:"type"`
	Params map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty"`
}

// File names recognized inside project and component directories.
const (
	ComponentTypeFile   = "component-type.yaml"
	ComponentTypeSuffix = ".component-type.yaml"
	ComponentFileName   = "component.yaml"
)
