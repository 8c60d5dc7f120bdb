package component

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dgc-labs/dgc/internal/manifest"
)

// FindLocalTypes loads the component types declared by component-type.yaml and
// *.component-type.yaml manifests directly inside dir, sorted by file name.
// A directory without manifests yields no types and no error.
func FindLocalTypes(dir string) ([]Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading component directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && manifest.IsComponentTypeFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	result := make([]Descriptor, 0, len(names))
	seen := make(map[string]string)
	for _, name := range names {
		path := filepath.Join(dir, name)
		m, err := manifest.ParseComponentType(path)
		if err != nil {
			return nil, err
		}
		if m.Name == "" {
			return nil, fmt.Errorf("component type manifest %s missing required 'name' field", path)
		}
		if prev, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("%w: %s declared by %s and %s", ErrDuplicateKey, LocalKey(m.Name), prev, path)
		}
		seen[m.Name] = path

		d, err := DescriptorFromManifest(m)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		result = append(result, d)
	}
	return result, nil
}

// DescriptorFromManifest converts a parsed component-type manifest.
func DescriptorFromManifest(m *manifest.ComponentTypeManifest) (Descriptor, error) {
	d := Descriptor{
		Name:        m.Name,
		Summary:     m.Summary,
		Description: m.Description,
	}
	if len(m.Params) > 0 {
		raw, err := json.Marshal(m.Params)
		if err != nil {
			return Descriptor{}, fmt.Errorf("encoding params schema of %s: %w", m.Name, err)
		}
		d.ParamsSchema = raw
	}
	if len(m.ScaffoldParams) > 0 || len(m.Metadata) > 0 || m.Version != "" {
		d.Metadata = make(map[string]any, len(m.Metadata)+2)
		for k, v := range m.Metadata {
			d.Metadata[k] = v
		}
		if m.Version != "" {
			d.Metadata["version"] = m.Version
		}
		if len(m.ScaffoldParams) > 0 {
			d.Metadata[MetaScaffoldParamsSchema] = m.ScaffoldParams
		}
	}
	return d, nil
}
