package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/dgc-labs/dgc/internal/branding"
	"github.com/dgc-labs/dgc/internal/component"
	"github.com/dgc-labs/dgc/internal/project"
	"github.com/dgc-labs/dgc/internal/scaffold"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var (
	scaffoldOutputDir string
	scaffoldParams    map[string]string
)

func init() {
	scaffoldCmd.PersistentFlags().StringVar(&scaffoldOutputDir, "output-dir", "", "Output directory (default depends on the subcommand)")
	scaffoldComponentCmd.Flags().StringToStringVar(&scaffoldParams, "param", nil, "Initial params as key=value (repeatable)")

	scaffoldCmd.AddCommand(scaffoldProjectCmd)
	scaffoldCmd.AddCommand(scaffoldComponentTypeCmd)
	scaffoldCmd.AddCommand(scaffoldComponentCmd)
	rootCmd.AddCommand(scaffoldCmd)
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Scaffold projects, component types and components",
}

var scaffoldProjectCmd = &cobra.Command{
	Use:   "project <name>",
	Short: "Scaffold a new project",
	Long: `Create a code location with its ` + branding.ProjectFile() + `, lib/ and components/ directories.

Example:
  ` + branding.CLIName() + ` scaffold project analytics`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}
		root := scaffoldOutputDir
		if root == "" {
			root = filepath.Join(".", name)
		}
		return scaffoldProject(cmd.OutOrStdout(), root, name)
	},
}

var scaffoldComponentTypeCmd = &cobra.Command{
	Use:   "component-type <name>",
	Short: "Scaffold a project-local component type",
	Long: `Write a component-type.yaml manifest. Inside a project it goes to
<project>/lib/<name>/ and is keyed "<project>.<name>".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		return scaffoldComponentType(cmd.OutOrStdout(), cwd, name, scaffoldOutputDir)
	},
}

var scaffoldComponentCmd = &cobra.Command{
	Use:   "component <type> <name>",
	Short: "Scaffold a component instance",
	Long: `Write components/<name>/component.yaml for the given component type.

Example:
  ` + branding.CLIName() + ` scaffold component dgc.definitions my_defs --param definitions_path=defs.go`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeKey, name := args[0], args[1]
		if err := validateName(name); err != nil {
			return err
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		return scaffoldComponent(cmd.OutOrStdout(), cwd, typeKey, name, scaffoldOutputDir, scaffoldParams, includeBuiltin())
	},
}

func scaffoldProject(w io.Writer, root, name string) error {
	if _, err := os.Stat(project.ConfigPath(root)); err == nil {
		return fmt.Errorf("%s already exists", project.ConfigPath(root))
	}
	if err := project.InitProject(root, name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Created project %s at %s/\n", name, root)
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintf(w, "  1. cd %s\n", root)
	fmt.Fprintf(w, "  2. %s scaffold component-type <name>\n", branding.CLIName())
	return nil
}

func scaffoldComponentType(w io.Writer, cwd, name, outDir string) error {
	var typeKey string
	if project.IsInsideProject(cwd) {
		pctx, err := projectContext(cwd, nil)
		if err != nil {
			return err
		}
		typeKey = component.JoinKey(pctx.Config.ProjectName, name)
		if outDir == "" {
			outDir = filepath.Join(pctx.LibPath(), name)
		}
	} else if outDir == "" {
		return fmt.Errorf("not inside a project; pass --output-dir to write a local component type")
	}

	data := scaffold.NewScaffoldData(name, typeKey)
	result, err := scaffold.Generate(scaffold.KindComponentType, data, outDir)
	if err != nil {
		return err
	}
	printResult(w, "component type "+data.TypeKey, result)
	return nil
}

func scaffoldComponent(w io.Writer, cwd, typeKey, name, outDir string, params map[string]string, builtin bool) error {
	if !component.IsLocalKey(typeKey) {
		if _, _, err := component.SplitKey(typeKey); err != nil {
			return err
		}
	}

	if project.IsInsideProject(cwd) {
		registry, err := component.FromDiscovery(builtin)
		if err != nil {
			return fmt.Errorf("discovering component types: %w", err)
		}
		pctx, err := projectContext(cwd, registry)
		if err != nil {
			return err
		}
		if !component.IsLocalKey(typeKey) {
			if err := requireKnownType(pctx, typeKey); err != nil {
				return err
			}
		}
		if outDir == "" {
			outDir = filepath.Join(pctx.ComponentsPath(), name)
		}
	} else if outDir == "" {
		return fmt.Errorf("not inside a project; pass --output-dir to write a component")
	}

	data := scaffold.NewScaffoldData(name, typeKey)
	data.Params = params
	result, err := scaffold.Generate(scaffold.KindComponent, data, outDir)
	if err != nil {
		return err
	}
	logger.Debug("scaffolded component", zap.String("type", typeKey), zap.String("dir", outDir))
	printResult(w, "component "+name, result)
	return nil
}

func requireKnownType(pctx *project.Context, key string) error {
	types, err := pctx.ListComponentTypes()
	if err != nil {
		return err
	}
	for _, t := range types {
		if t.Key == key {
			return nil
		}
	}
	return fmt.Errorf("unknown component type %q; run '%s list component-types' to see available types", key, branding.CLIName())
}

// ─── Helpers ───────────────────────────────────────────────────────

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: must match pattern [A-Za-z_][A-Za-z0-9_]*", name)
	}
	return nil
}

func printResult(w io.Writer, what string, result *scaffold.Result) {
	fmt.Fprintf(w, "Created %s at %s/\n", what, result.OutputDir)
	for _, f := range result.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}
