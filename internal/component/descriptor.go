package component

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Descriptor describes one component type.
type Descriptor struct {
	Name        string
	Summary     string
	Description string

	// Params is the zero value of the type's params struct. Its JSON Schema
	// is reflected from the struct's json and jsonschema tags.
	Params any

	// ParamsSchema is an explicit JSON Schema for params. It wins over Params
	// and is how manifest-defined types declare their schema.
	ParamsSchema json.RawMessage

	// ScaffoldParams is the zero value of the struct accepted when scaffolding
	// an instance of this type, or nil.
	ScaffoldParams any

	// Metadata holds extra free-form metadata reported by list commands.
	Metadata map[string]any
}

// Metadata keys reported for every type.
const (
	MetaSummary               = "summary"
	MetaDescription           = "description"
	MetaComponentParamsSchema = "component_params_schema"
	MetaScaffoldParamsSchema  = "scaffold_params_schema"
)

// HasSchema reports whether the type declares a params schema.
func (d Descriptor) HasSchema() bool {
	return len(d.ParamsSchema) > 0 || d.Params != nil
}

// Schema returns the params JSON Schema as a generic map, or nil when the
// type declares none.
func (d Descriptor) Schema() (map[string]any, error) {
	if len(d.ParamsSchema) > 0 {
		var m map[string]any
		if err := json.Unmarshal(d.ParamsSchema, &m); err != nil {
			return nil, fmt.Errorf("decoding params schema of %s: %w", d.Name, err)
		}
		if len(m) == 0 {
			return nil, nil
		}
		return m, nil
	}
	if d.Params == nil {
		return nil, nil
	}
	return reflectSchema(d.Params)
}

// GetMetadata returns the metadata mapping reported for this type.
func (d Descriptor) GetMetadata() (map[string]any, error) {
	params, err := d.Schema()
	if err != nil {
		return nil, err
	}
	var scaffold map[string]any
	if d.ScaffoldParams != nil {
		scaffold, err = reflectSchema(d.ScaffoldParams)
		if err != nil {
			return nil, err
		}
	}

	md := map[string]any{
		MetaSummary:               nullable(d.Summary),
		MetaDescription:           nullable(d.Description),
		MetaComponentParamsSchema: nilIfEmpty(params),
		MetaScaffoldParamsSchema:  nilIfEmpty(scaffold),
	}
	for k, v := range d.Metadata {
		md[k] = v
	}
	return md, nil
}

// reflectSchema reflects v into an inlined JSON Schema without $schema or $id,
// so it can be embedded in a larger document.
func reflectSchema(v any) (map[string]any, error) {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(v)

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling reflected schema for %T: %w", v, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding reflected schema for %T: %w", v, err)
	}
	delete(m, "$schema")
	delete(m, "$id")
	return m, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nilIfEmpty(m map[string]any) any {
	if len(m) == 0 {
		return nil
	}
	return m
}
