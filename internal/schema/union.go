package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgc-labs/dgc/internal/project"
)

// ErrNoSchemas is returned when no visible component type declares a params schema.
var ErrNoSchemas = errors.New("no component type declares a params schema")

const (
	defsKeyword   = "$defs"
	typeProperty  = "type"
	paramProperty = "params"
)

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// Member is one alternative of the union.
type Member struct {
	Key    string
	Params map[string]any
}

// Union is the set of schema-bearing component types, in enumeration order.
type Union struct {
	Members []Member
	shared  map[string]any
}

// Document is the JSON form of a Union.
type Document struct {
	OneOf         []Ref          `json:"oneOf"`
	Discriminator Discriminator  `json:"discriminator"`
	Defs          map[string]any `json:"$defs"`
}

// Ref is a JSON Schema reference.
type Ref struct {
	Ref string `json:"$ref"`
}

// Discriminator maps each type tag to its member definition.
type Discriminator struct {
	PropertyName string            `json:"propertyName"`
	Mapping      map[string]string `json:"mapping"`
}

// Unify builds the union over types. Types without a params schema are
// skipped; their order is otherwise preserved.
func Unify(types []project.KeyedType) (*Union, error) {
	u := &Union{shared: make(map[string]any)}
	for _, kt := range types {
		params, err := kt.Descriptor.Schema()
		if err != nil {
			return nil, fmt.Errorf("component type %s: %w", kt.Key, err)
		}
		if len(params) == 0 {
			continue
		}
		params = u.hoistDefs(kt.Key, params)
		u.Members = append(u.Members, Member{Key: kt.Key, Params: params})
	}
	if len(u.Members) == 0 {
		return nil, ErrNoSchemas
	}
	return u, nil
}

// hoistDefs moves a member schema's own $defs to the top of the document under
// "<key>.<name>" and rewrites the member's "#/$defs/<name>" references to match,
// so two types may declare definitions of the same name.
func (u *Union) hoistDefs(key string, params map[string]any) map[string]any {
	defs, ok := params[defsKeyword].(map[string]any)
	if !ok {
		return params
	}
	renamed := make(map[string]string, len(defs))
	for name := range defs {
		renamed[name] = key + "." + name
	}
	for name, def := range defs {
		u.shared[renamed[name]] = rewriteRefs(def, renamed)
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		if k != defsKeyword {
			out[k] = rewriteRefs(v, renamed)
		}
	}
	return out
}

// rewriteRefs returns a copy of v with local $defs references renamed.
func rewriteRefs(v any, renamed map[string]string) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			if ref, ok := child.(string); ok && k == "$ref" {
				out[k] = renameRef(ref, renamed)
				continue
			}
			out[k] = rewriteRefs(child, renamed)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = rewriteRefs(child, renamed)
		}
		return out
	default:
		return v
	}
}

func renameRef(ref string, renamed map[string]string) string {
	const prefix = "#/" + defsKeyword + "/"
	rest, ok := strings.CutPrefix(ref, prefix)
	if !ok {
		return ref
	}
	escaped, tail, _ := strings.Cut(rest, "/")
	to, ok := renamed[pointerUnescaper.Replace(escaped)]
	if !ok {
		return ref
	}
	if tail != "" {
		tail = "/" + tail
	}
	return prefix + pointerEscaper.Replace(to) + tail
}

// Keys returns the member keys in order.
func (u *Union) Keys() []string {
	keys := make([]string, len(u.Members))
	for i, m := range u.Members {
		keys[i] = m.Key
	}
	return keys
}

// Document renders the union as a JSON Schema document.
func (u *Union) Document() (*Document, error) {
	doc := &Document{
		Discriminator: Discriminator{PropertyName: typeProperty, Mapping: make(map[string]string)},
		Defs:          make(map[string]any, len(u.Members)+len(u.shared)),
	}
	for name, def := range u.shared {
		doc.Defs[name] = def
	}
	for _, m := range u.Members {
		if _, dup := doc.Defs[m.Key]; dup {
			return nil, fmt.Errorf("component type %s collides with a shared definition", m.Key)
		}
		ref := MemberRef(m.Key)
		doc.Defs[m.Key] = memberSchema(m)
		doc.OneOf = append(doc.OneOf, Ref{Ref: ref})
		doc.Discriminator.Mapping[m.Key] = ref
	}
	return doc, nil
}

// MarshalJSON writes the union document.
func (u *Union) MarshalJSON() ([]byte, error) {
	doc, err := u.Document()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// MemberRef returns the in-document reference to the member for key.
func MemberRef(key string) string {
	return "#/" + defsKeyword + "/" + pointerEscaper.Replace(key)
}

func memberSchema(m Member) map[string]any {
	return map[string]any{
		"type":  "object",
		"title": m.Key,
		"properties": map[string]any{
			typeProperty: map[string]any{
				"const":   m.Key,
				"default": m.Key,
				"type":    "string",
				"title":   "Type",
			},
			paramProperty: map[string]any{
				"anyOf":   []any{m.Params, map[string]any{"type": "null"}},
				"default": nil,
			},
		},
		"additionalProperties": false,
	}
}
