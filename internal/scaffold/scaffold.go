package scaffold

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/dgc-labs/dgc/internal/component"
	"github.com/dgc-labs/dgc/internal/manifest"
)

// Kinds that Generate knows how to produce.
const (
	KindComponentType = "component-type"
	KindComponent     = "component"
)

// ScaffoldData holds all template variables available to scaffold templates.
type ScaffoldData struct {
	Name    string // e.g., "csv_loader"
	TypeKey string // e.g., "acme.csv_loader"
	Summary string
	Version string            // Semver, e.g., "0.1.0"
	Params  map[string]string // Initial params for component instances
	Year    int
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewScaffoldData creates a ScaffoldData with derived fields populated.
// typeKey may be a full "<package>.<name>" key or empty, in which case the
// local key ".<name>" is used.
func NewScaffoldData(name, typeKey string) *ScaffoldData {
	if typeKey == "" {
		typeKey = component.LocalKey(name)
	}
	return &ScaffoldData{
		Name:    name,
		TypeKey: typeKey,
		Summary: fmt.Sprintf("Component type %s", name),
		Version: "0.1.0",
		Year:    time.Now().Year(),
	}
}

// Kinds lists the template sets embedded in the binary.
func Kinds() []string {
	entries, err := fs.ReadDir(scaffoldFS, "scaffolds")
	if err != nil {
		return nil
	}
	var kinds []string
	for _, e := range entries {
		if e.IsDir() {
			kinds = append(kinds, e.Name())
		}
	}
	sort.Strings(kinds)
	return kinds
}

// Generate renders the template set for kind into outputDir.
func Generate(kind string, data *ScaffoldData, outputDir string) (*Result, error) {
	templatesDir := path.Join("scaffolds", kind)

	entries, err := fs.ReadDir(scaffoldFS, templatesDir)
	if err != nil {
		return nil, fmt.Errorf("template set %q not found: %w", kind, err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// Refuse to clobber an existing manifest of the same kind.
	for _, entry := range entries {
		outName := strings.TrimSuffix(entry.Name(), ".tmpl")
		if _, err := os.Stat(filepath.Join(outputDir, outName)); err == nil {
			return nil, fmt.Errorf("%s already exists in %s; remove it first", outName, outputDir)
		}
	}

	result := &Result{
		OutputDir: outputDir,
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		tmplPath := path.Join(templatesDir, entry.Name())
		tmplBytes, err := fs.ReadFile(scaffoldFS, tmplPath)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", tmplPath, err)
		}

		outName := strings.TrimSuffix(entry.Name(), ".tmpl")
		outPath := filepath.Join(outputDir, outName)

		tmpl, err := template.New(entry.Name()).Parse(string(tmplBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry.Name(), err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", entry.Name(), err)
		}

		if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}

		result.Files = append(result.Files, outName)
	}

	switch kind {
	case KindComponentType:
		result.Warnings = append(result.Warnings, validateType(filepath.Join(outputDir, manifest.ComponentTypeFile))...)
	case KindComponent:
		if _, err := manifest.ParseComponentFile(filepath.Join(outputDir, manifest.ComponentFileName)); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		}
	}

	return result, nil
}

func validateType(manifestFile string) []string {
	valResult, err := manifest.ValidateFile(manifestFile)
	if err != nil {
		return []string{fmt.Sprintf("Could not validate manifest: %v", err)}
	}
	var warnings []string
	for _, issue := range valResult.Issues {
		msg := issue.Message
		if issue.Path != "" {
			msg = issue.Path + ": " + msg
		}
		warnings = append(warnings, msg)
	}
	return warnings
}
