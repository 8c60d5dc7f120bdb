package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgc-labs/dgc/internal/component"
	"github.com/dgc-labs/dgc/internal/manifest"
	"github.com/dgc-labs/dgc/internal/project"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
)

const resourceURL = "components.schema.json"

// Compiled is a union compiled for validation.
type Compiled struct {
	compiler *jsonschema.Compiler
	union    *jsonschema.Schema
	keys     map[string]bool
	members  map[string]*jsonschema.Schema
}

// Compile compiles the union document.
func Compile(u *Union) (*Compiled, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("marshaling union schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling union schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	union, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compiling union schema: %w", err)
	}
	keys := make(map[string]bool, len(u.Members))
	for _, m := range u.Members {
		keys[m.Key] = true
	}
	return &Compiled{compiler: c, union: union, keys: keys, members: make(map[string]*jsonschema.Schema)}, nil
}

// Has reports whether key is a member of the union.
func (c *Compiled) Has(key string) bool {
	return c.keys[key]
}

// Validate checks a JSON value against the whole union.
func (c *Compiled) Validate(inst any) []manifest.ValidationIssue {
	return issuesOf(c.union.Validate(inst))
}

// ValidateMember checks a JSON value against the member for key only, which
// yields issues about that type's params instead of every alternative.
func (c *Compiled) ValidateMember(key string, inst any) ([]manifest.ValidationIssue, error) {
	s, ok := c.members[key]
	if !ok {
		var err error
		s, err = c.compiler.Compile(resourceURL + MemberRef(key))
		if err != nil {
			return nil, fmt.Errorf("compiling member %s: %w", key, err)
		}
		c.members[key] = s
	}
	return issuesOf(s.Validate(inst)), nil
}

func issuesOf(err error) []manifest.ValidationIssue {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		return manifest.ExtractIssues(ve)
	}
	return []manifest.ValidationIssue{{Message: err.Error()}}
}

// InstanceResult is the outcome of checking one component.yaml.
type InstanceResult struct {
	Instance project.Instance
	Type     string
	Issues   []manifest.ValidationIssue
}

// Valid reports whether the instance passed.
func (r InstanceResult) Valid() bool {
	return len(r.Issues) == 0
}

// CheckProject validates every component instance in the project. Instances
// whose type is local (".name") are checked against the type defined in
// their own directory.
func CheckProject(pctx *project.Context) ([]InstanceResult, error) {
	types, err := pctx.ListComponentTypes()
	if err != nil {
		return nil, err
	}
	instances, err := pctx.Instances()
	if err != nil {
		return nil, err
	}

	var compiled *Compiled
	union, err := Unify(types)
	switch {
	case err == nil:
		if compiled, err = Compile(union); err != nil {
			return nil, err
		}
	case !errors.Is(err, ErrNoSchemas):
		return nil, err
	}

	byKey := make(map[string]component.Descriptor, len(types))
	for _, kt := range types {
		byKey[kt.Key] = kt.Descriptor
	}

	results := make([]InstanceResult, 0, len(instances))
	for _, inst := range instances {
		r, err := checkInstance(inst, byKey, compiled)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func checkInstance(inst project.Instance, byKey map[string]component.Descriptor, compiled *Compiled) (InstanceResult, error) {
	result := InstanceResult{Instance: inst}

	data, err := os.ReadFile(inst.Path)
	if err != nil {
		return result, fmt.Errorf("reading %s: %w", inst.Path, err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		result.Issues = []manifest.ValidationIssue{{Message: fmt.Sprintf("invalid YAML: %v", err), Keyword: "yaml"}}
		return result, nil
	}
	value, err := manifest.ToJSONValue(raw)
	if err != nil {
		return result, err
	}
	obj, _ := value.(map[string]any)
	key, _ := obj["type"].(string)
	result.Type = key
	if key == "" {
		result.Issues = []manifest.ValidationIssue{{Path: "/type", Message: "missing component type", Keyword: "required"}}
		return result, nil
	}

	if component.IsLocalKey(key) {
		issues, err := checkLocal(inst, key, value)
		result.Issues = issues
		return result, err
	}

	if _, ok := byKey[key]; !ok {
		result.Issues = []manifest.ValidationIssue{{Path: "/type", Message: fmt.Sprintf("unknown component type %q", key), Keyword: "type"}}
		return result, nil
	}
	if compiled == nil || !compiled.Has(key) {
		result.Issues = paramlessIssues(key, obj)
		return result, nil
	}
	result.Issues, err = compiled.ValidateMember(key, value)
	return result, err
}

func checkLocal(inst project.Instance, key string, value any) ([]manifest.ValidationIssue, error) {
	local, err := component.FindLocalTypes(inst.Dir)
	if err != nil {
		return nil, err
	}
	for _, d := range local {
		if component.LocalKey(d.Name) != key {
			continue
		}
		u, err := Unify([]project.KeyedType{{Key: key, Descriptor: d}})
		if errors.Is(err, ErrNoSchemas) {
			obj, _ := value.(map[string]any)
			return paramlessIssues(key, obj), nil
		}
		if err != nil {
			return nil, err
		}
		compiled, err := Compile(u)
		if err != nil {
			return nil, err
		}
		return compiled.ValidateMember(key, value)
	}
	return []manifest.ValidationIssue{{
		Path:    "/type",
		Message: fmt.Sprintf("local component type %q not found in %s", key, inst.Dir),
		Keyword: "type",
	}}, nil
}

// paramlessIssues reports params given to a type that accepts none.
func paramlessIssues(key string, obj map[string]any) []manifest.ValidationIssue {
	if p, ok := obj["params"]; ok && p != nil {
		return []manifest.ValidationIssue{{
			Path:    "/params",
			Message: fmt.Sprintf("component type %s takes no params", key),
			Keyword: "params",
		}}
	}
	return nil
}
