// Package scaffold generates component types and component instances from
// embedded templates. It powers "dgc scaffold", writing the manifest files a
// project expects and validating generated component-type manifests.
package scaffold
