package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgc-labs/dgc/internal/component"
	"github.com/dgc-labs/dgc/internal/manifest"
	"github.com/dgc-labs/dgc/internal/schema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	checkCmd.AddCommand(checkYAMLCmd)
	checkCmd.AddCommand(checkManifestCmd)
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate project files",
}

var checkYAMLCmd = &cobra.Command{
	Use:   "yaml",
	Short: "Validate every component.yaml in the project",
	Long: `Validate each components/<name>/component.yaml of the enclosing project against
the schema of its component type. Local types (".<name>") are resolved from the
component-type.yaml manifests next to the instance.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		return checkProjectYAML(cmd.OutOrStdout(), cwd, includeBuiltin())
	},
}

var checkManifestCmd = &cobra.Command{
	Use:   "manifest <file>...",
	Short: "Validate component-type.yaml manifests",
	Args:  cobra.MatchAll(cobra.MinimumNArgs(1), existingPaths),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkManifests(cmd.OutOrStdout(), args)
	},
}

func checkProjectYAML(w io.Writer, cwd string, builtin bool) error {
	registry, err := component.FromDiscovery(builtin)
	if err != nil {
		return fmt.Errorf("discovering component types: %w", err)
	}
	pctx, err := projectContext(cwd, registry)
	if err != nil {
		return err
	}
	results, err := schema.CheckProject(pctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		rel, err := filepath.Rel(pctx.Root, r.Instance.Path)
		if err != nil {
			rel = r.Instance.Path
		}
		if r.Valid() {
			fmt.Fprintf(w, "ok    %s (%s)\n", rel, r.Type)
			continue
		}
		failed++
		fmt.Fprintf(w, "FAIL  %s (%s)\n", rel, r.Type)
		printIssues(w, r.Issues)
	}
	logger.Debug("checked component files", zap.Int("total", len(results)), zap.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%d of %d component files failed validation", failed, len(results))
	}
	fmt.Fprintf(w, "%d component files valid\n", len(results))
	return nil
}

func checkManifests(w io.Writer, paths []string) error {
	failed := 0
	for _, path := range paths {
		result, err := manifest.ValidateFile(path)
		if err != nil {
			return err
		}
		issues := result.Issues
		if result.Valid {
			m, err := manifest.ParseComponentType(path)
			if err != nil {
				return err
			}
			if err := manifest.CheckRequires(m, buildVersion); err != nil {
				issues = append(issues, manifest.ValidationIssue{Path: "/requires", Message: err.Error(), Keyword: "requires"})
			}
		}
		if len(issues) == 0 {
			fmt.Fprintf(w, "ok    %s\n", path)
			continue
		}
		failed++
		fmt.Fprintf(w, "FAIL  %s\n", path)
		printIssues(w, issues)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d manifests failed validation", failed, len(paths))
	}
	return nil
}

func printIssues(w io.Writer, issues []manifest.ValidationIssue) {
	for _, issue := range issues {
		if issue.Path != "" {
			fmt.Fprintf(w, "      %s: %s\n", issue.Path, issue.Message)
		} else {
			fmt.Fprintf(w, "      %s\n", issue.Message)
		}
	}
}
