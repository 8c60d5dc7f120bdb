package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dgc-labs/dgc/internal/component"
	"github.com/dgc-labs/dgc/internal/project"
	"github.com/dgc-labs/dgc/internal/schema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	listCmd.AddCommand(listComponentTypesCmd)
	listCmd.AddCommand(listLocalComponentTypesCmd)
	listCmd.AddCommand(listAllComponentsSchemaCmd)
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List component types and related entities",
}

var listComponentTypesCmd = &cobra.Command{
	Use:   "component-types",
	Short: "List registered component types",
	Long: `Print a JSON object mapping every visible component type key to its metadata.

Outside a project every registered library is listed, sorted by key. Inside a
project the types visible to the code location are listed, registry types first
and then the project's own types from its lib/ directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		listing, err := componentTypes(cwd, includeBuiltin())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), listing)
	},
}

var listLocalComponentTypesCmd = &cobra.Command{
	Use:   "local-component-types <dir>...",
	Short: "List local component types found in the given directories",
	Long: `Print a JSON object mapping each directory to the component types defined in
its component-type.yaml manifests. Local types are keyed ".<name>". Directories
without local types are left out.`,
	Args: cobra.MatchAll(cobra.MinimumNArgs(1), existingPaths),
	RunE: func(cmd *cobra.Command, args []string) error {
		listing, err := localComponentTypes(args)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), listing)
	},
}

var listAllComponentsSchemaCmd = &cobra.Command{
	Use:   "all-components-schema",
	Short: "Print the JSON Schema of every component file in the project",
	Long: `Build a JSON Schema that accepts a component.yaml for any component type
available in the current project. The schema is a oneOf discriminated on the
"type" property. Types without a params schema are left out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		union, err := allComponentsSchema(cwd, includeBuiltin())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), union)
	},
}

// componentTypes lists the types visible from cwd.
func componentTypes(cwd string, builtin bool) (*component.Listing, error) {
	registry, err := component.FromDiscovery(builtin)
	if err != nil {
		return nil, fmt.Errorf("discovering component types: %w", err)
	}

	listing := component.NewListing()
	if !project.IsInsideProject(cwd) {
		logger.Debug("listing registry types", zap.Int("count", registry.Len()))
		for _, key := range registry.Keys() {
			d, _ := registry.Get(key)
			if err := addKeyed(listing, key, d); err != nil {
				return nil, err
			}
		}
		return listing, nil
	}

	pctx, err := projectContext(cwd, registry)
	if err != nil {
		return nil, err
	}
	types, err := pctx.ListComponentTypes()
	if err != nil {
		return nil, err
	}
	logger.Debug("listing project types", zap.String("root", pctx.Root), zap.Int("count", len(types)))
	for _, t := range types {
		if err := addKeyed(listing, t.Key, t.Descriptor); err != nil {
			return nil, err
		}
	}
	return listing, nil
}

func addKeyed(listing *component.Listing, key string, d component.Descriptor) error {
	meta, err := component.KeyedMetadata(key, d)
	if err != nil {
		return err
	}
	listing.Set(key, meta)
	return nil
}

// localComponentTypes lists the local types of each directory in order.
func localComponentTypes(dirs []string) (*component.Listing, error) {
	listing := component.NewListing()
	for _, dir := range dirs {
		types, err := component.FindLocalTypes(dir)
		if err != nil {
			return nil, err
		}
		if len(types) == 0 {
			logger.Debug("no local component types", zap.String("dir", dir))
			continue
		}
		perDir := component.NewListing()
		for _, d := range types {
			meta, err := component.TypeMetadata(dir, d.Name, d)
			if err != nil {
				return nil, err
			}
			perDir.Set(component.LocalKey(d.Name), meta)
		}
		listing.Set(dir, perDir)
	}
	return listing, nil
}

// allComponentsSchema builds the component file union for the project
// enclosing cwd.
func allComponentsSchema(cwd string, builtin bool) (*schema.Union, error) {
	if !project.IsInsideProject(cwd) {
		return nil, fmt.Errorf("%s: %w", cwd, project.ErrNotInProject)
	}
	registry, err := component.FromDiscovery(builtin)
	if err != nil {
		return nil, fmt.Errorf("discovering component types: %w", err)
	}
	pctx, err := projectContext(cwd, registry)
	if err != nil {
		return nil, err
	}
	types, err := pctx.ListComponentTypes()
	if err != nil {
		return nil, err
	}
	return schema.Unify(types)
}

// projectContext resolves the code location enclosing cwd.
func projectContext(cwd string, registry *component.Registry) (*project.Context, error) {
	root, err := project.FindEnclosingRoot(cwd)
	if err != nil {
		return nil, err
	}
	return project.NewContext(root, registry)
}

func existingPaths(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		if _, err := os.Stat(arg); err != nil {
			return fmt.Errorf("path %q does not exist", arg)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
