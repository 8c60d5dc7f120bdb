package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dgc-labs/dgc/internal/component"
	"github.com/dgc-labs/dgc/internal/manifest"
)

// Context binds a code location to the registry it was discovered with.
type Context struct {
	Root     string
	Config   *ProjectConfig
	Registry *component.Registry
}

// KeyedType is a component type together with its qualified key.
type KeyedType struct {
	Key        string
	Descriptor component.Descriptor
}

// Instance is a component instance directory inside the project.
type Instance struct {
	Name string
	Dir  string
	Path string
}

// NewContext loads the code location at root.
func NewContext(root string, registry *component.Registry) (*Context, error) {
	config, err := LoadProject(root)
	if err != nil {
		return nil, err
	}
	if !config.IsCodeLocation {
		return nil, fmt.Errorf("%s is not a code location", root)
	}
	if registry == nil {
		registry = component.NewRegistry()
	}
	return &Context{Root: root, Config: config, Registry: registry}, nil
}

// LibPath returns the directory holding project-local component types.
func (c *Context) LibPath() string {
	return filepath.Join(c.Root, c.Config.ProjectName, libDir)
}

// ComponentsPath returns the directory holding component instances.
func (c *Context) ComponentsPath() string {
	return filepath.Join(c.Root, c.Config.ProjectName, componentsDir)
}

// ListComponentTypes returns the types visible to the project: registry types
// sorted by key, then the project's own types sorted by name and keyed
// "<project_name>.<name>".
func (c *Context) ListComponentTypes() ([]KeyedType, error) {
	var result []KeyedType
	for _, key := range c.Registry.Keys() {
		d, _ := c.Registry.Get(key)
		result = append(result, KeyedType{Key: key, Descriptor: d})
	}

	local, err := c.projectTypes()
	if err != nil {
		return nil, err
	}
	for _, d := range local {
		key := component.JoinKey(c.Config.ProjectName, d.Name)
		if c.Registry.Has(key) {
			return nil, fmt.Errorf("%w: project type %s shadows a library type", component.ErrDuplicateKey, key)
		}
		result = append(result, KeyedType{Key: key, Descriptor: d})
	}
	return result, nil
}

// projectTypes scans lib/ and each of its immediate subdirectories.
func (c *Context) projectTypes() ([]component.Descriptor, error) {
	lib := c.LibPath()
	entries, err := os.ReadDir(lib)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading project lib %s: %w", lib, err)
	}

	dirs := []string{lib}
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(lib, entry.Name()))
		}
	}

	var all []component.Descriptor
	seen := make(map[string]bool)
	for _, dir := range dirs {
		types, err := component.FindLocalTypes(dir)
		if err != nil {
			return nil, err
		}
		for _, d := range types {
			if seen[d.Name] {
				return nil, fmt.Errorf("%w: %s defined twice under %s", component.ErrDuplicateKey, d.Name, lib)
			}
			seen[d.Name] = true
			all = append(all, d)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// Instances returns every components/<name>/component.yaml, sorted by name.
func (c *Context) Instances() ([]Instance, error) {
	dir := c.ComponentsPath()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading components directory %s: %w", dir, err)
	}

	var result []Instance
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		instDir := filepath.Join(dir, entry.Name())
		path := filepath.Join(instDir, manifest.ComponentFileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		result = append(result, Instance{Name: entry.Name(), Dir: instDir, Path: path})
	}
	return result, nil
}
