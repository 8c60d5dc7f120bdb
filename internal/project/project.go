package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgc-labs/dgc/internal/branding"
	"go.yaml.in/yaml/v3"
)

const (
	libDir        = "lib"
	componentsDir = "components"
)

// ErrNotInProject is returned when a command that needs a project runs outside one.
var ErrNotInProject = errors.New("not inside a dgc project")

// ProjectConfig represents the dgc.yaml structure.
type ProjectConfig struct {
	ProjectName    string `yaml:"project_name"`
	ModuleName     string `yaml:"module_name,omitempty"`
	IsCodeLocation bool   `yaml:"is_code_location"`
	IsComponentLib bool   `yaml:"is_component_lib"`
}

// ConfigPath returns the full path to dgc.yaml for a project.
func ConfigPath(root string) string {
	return filepath.Join(root, branding.ProjectFile())
}

// LoadProject reads and parses dgc.yaml from the given project directory.
func LoadProject(root string) (*ProjectConfig, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}

	var config ProjectConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing project config: %w", err)
	}
	if config.ProjectName == "" {
		return nil, fmt.Errorf("project config %s missing required 'project_name' field", ConfigPath(root))
	}
	return &config, nil
}

// SaveProject writes the project config to dgc.yaml.
func SaveProject(root string, config *ProjectConfig) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling project config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing project config: %w", err)
	}
	return nil
}

// InitProject creates a code location at root with its lib/ and components/
// directories.
func InitProject(root, name string) error {
	for _, dir := range []string{libDir, componentsDir} {
		path := filepath.Join(root, name, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s directory: %w", dir, err)
		}
	}
	return SaveProject(root, &ProjectConfig{
		ProjectName:    name,
		ModuleName:     name,
		IsCodeLocation: true,
	})
}

// IsInsideProject reports whether dir or any of its parents holds a dgc.yaml.
func IsInsideProject(dir string) bool {
	_, err := findUp(dir, func(string) bool { return true })
	return err == nil
}

// FindEnclosingRoot walks up from dir to the nearest code location root.
func FindEnclosingRoot(dir string) (string, error) {
	root, err := findUp(dir, func(candidate string) bool {
		config, err := LoadProject(candidate)
		return err == nil && config.IsCodeLocation
	})
	if err != nil {
		return "", fmt.Errorf("resolving code location root from %s: %w", dir, err)
	}
	return root, nil
}

func findUp(dir string, accept func(string) bool) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for {
		if info, err := os.Stat(ConfigPath(abs)); err == nil && !info.IsDir() && accept(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotInProject
		}
		abs = parent
	}
}
