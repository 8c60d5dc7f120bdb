// Package component defines component types and the registry they are
// discovered into. Component libraries register themselves from init()
// with RegisterLibrary; a Registry is built per invocation from the
// registered libraries, keyed by "<package>.<name>" qualified keys.
// Project-local component types are declared with component-type.yaml
// manifests and found with FindLocalTypes.
package component
