package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/component-type.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/name", "/params/type")
	Message string // Human-readable error message
	Keyword string // Schema keyword that failed
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("component-type.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("component-type.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate validates raw component-type YAML against the manifest schema and
// checks that version and requires are valid semver.
// The error return is for parse or schema compilation failures.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	inst, err := ToJSONValue(raw)
	if err != nil {
		return nil, err
	}

	var issues []ValidationIssue
	if err := schema.Validate(inst); err != nil {
		validationErr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, fmt.Errorf("unexpected validation error type: %w", err)
		}
		issues = append(issues, ExtractIssues(validationErr)...)
	}
	issues = append(issues, versionIssues(inst)...)

	return &ValidationResult{
		Valid:  len(issues) == 0,
		Issues: issues,
	}, nil
}

// ValidateFile reads a file and validates it against the manifest schema.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// CheckRequires reports whether the manifest's requires constraint admits
// cliVersion. Development builds ("dev" or any non-semver string) admit all.
func CheckRequires(m *ComponentTypeManifest, cliVersion string) error {
	if m.Requires == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(m.Requires)
	if err != nil {
		return fmt.Errorf("component type %s: invalid requires %q: %w", m.Name, m.Requires, err)
	}
	v, err := semver.NewVersion(cliVersion)
	if err != nil {
		return nil
	}
	if !constraint.Check(v) {
		return fmt.Errorf("component type %s requires %s, running %s", m.Name, m.Requires, v)
	}
	return nil
}

// versionIssues checks the semver-typed fields the JSON schema cannot express.
func versionIssues(inst interface{}) []ValidationIssue {
	obj, ok := inst.(map[string]interface{})
	if !ok {
		return nil
	}
	var issues []ValidationIssue
	if v, ok := obj["version"].(string); ok {
		if _, err := semver.StrictNewVersion(v); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "/version",
				Message: fmt.Sprintf("%q is not a semantic version", v),
				Keyword: "semver",
			})
		}
	}
	if r, ok := obj["requires"].(string); ok {
		if _, err := semver.NewConstraint(r); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "/requires",
				Message: fmt.Sprintf("%q is not a version constraint", r),
				Keyword: "semver",
			})
		}
	}
	return issues
}

// ToJSONValue converts a YAML-decoded document into the generic JSON value
// the schema validator expects (numbers as json.Number).
func ToJSONValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}
	return inst, nil
}

// ExtractIssues walks the ValidationError tree and returns leaf-level issues.
// For oneOf schemas (discriminated unions), we walk all branches to collect
// specific property-level errors rather than just "oneOf failed".
func ExtractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)

	if len(issues) == 0 {
		return []ValidationIssue{{
			Message: ve.Error(),
		}}
	}
	return deduplicateIssues(issues)
}

// collectValidationIssues recursively walks the error tree to find leaf errors
// with specific property information.
func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword := ""
		if ve.ErrorKind != nil {
			kwPath := ve.ErrorKind.KeywordPath()
			if len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
		}

		msg := ""
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Generic container errors carry no property information.
		if keyword == "oneOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, ValidationIssue{
			Path:    path,
			Message: msg,
			Keyword: keyword,
		})
		return
	}

	for _, cause := range ve.Causes {
		collectValidationIssues(cause, issues)
	}
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}

// normalizeYAML converts YAML-decoded values to JSON-compatible types. YAML
// mappings with non-string keys decode as map[interface{}]interface{}, which
// encoding/json rejects.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[k] = normalizeYAML(v)
		}
		return m
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []interface{}:
		a := make([]interface{}, len(val))
		for i, v := range val {
			a[i] = normalizeYAML(v)
		}
		return a
	default:
		return val
	}
}
