// Package manifest handles parsing and validation of the YAML files a project
// is made of: component-type.yaml manifests, which declare project-local
// component types, and component.yaml files, which instantiate a component
// type with params. Type manifests are validated against an embedded JSON
// Schema; instance files are validated by package schema against the union of
// all component types visible to the project.
package manifest
