// Package cli defines the Cobra command tree for the dgc CLI. Each file in
// this package registers one top-level command group (list, check, scaffold,
// table, config, version) with the root command. Commands delegate to internal
// packages for business logic and only handle flag parsing and output.
package cli
