// Package project locates dgc projects on disk and exposes the component types
// and component instances a project can see. A project root is marked by a
// dgc.yaml file; code locations keep their local component types under
// <project_name>/lib and their component instances under
// <project_name>/components.
package project
