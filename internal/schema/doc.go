// Package schema builds the discriminated-union JSON Schema that describes
// every valid component.yaml in a project, and validates instance files
// against it.
//
// Each component type with a params schema becomes one member of the union:
// an object with a "type" property fixed to the type's qualified key and an
// optional "params" property holding the type's own schema. Members are
// referenced from a top-level oneOf and tagged with an OpenAPI-style
// discriminator on "type".
package schema
