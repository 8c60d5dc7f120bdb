package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ParseComponentType reads a component-type manifest. When the manifest names
// a params_schema_file, the file is read and returned as Params.
func ParseComponentType(path string) (*ComponentTypeManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := parseTyped[ComponentTypeManifest](data, path)
	if err != nil {
		return nil, err
	}
	if m.ParamsSchemaFile != "" {
		schemaPath := m.ParamsSchemaFile
		if !filepath.IsAbs(schemaPath) {
			schemaPath = filepath.Join(filepath.Dir(path), schemaPath)
		}
		raw, err := readFile(schemaPath)
		if err != nil {
			return nil, err
		}
		var params map[string]interface{}
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("parsing params schema %s: %w", schemaPath, err)
		}
		m.Params = params
	}
	return m, nil
}

// ParseComponentFile reads a component.yaml instance file.
func ParseComponentFile(path string) (*ComponentFile, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := parseTyped[ComponentFile](data, path)
	if err != nil {
		return nil, err
	}
	if m.Type == "" {
		return nil, fmt.Errorf("component file %s missing required 'type' field", path)
	}
	return m, nil
}

// IsComponentTypeFile reports whether name is a component-type manifest file name.
func IsComponentTypeFile(name string) bool {
	return name == ComponentTypeFile || strings.HasSuffix(name, ComponentTypeSuffix)
}

// parseTyped unmarshals YAML data into a typed manifest struct.
func parseTyped[T any](data []byte, path string) (*T, error) {
	var m T
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
