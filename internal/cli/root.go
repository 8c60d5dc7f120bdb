package cli

import (
	"github.com/dgc-labs/dgc/internal/branding"
	"github.com/dgc-labs/dgc/internal/config"
	"github.com/dgc-labs/dgc/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	// Component libraries register themselves on import.
	_ "github.com/dgc-labs/dgc/internal/builtin"
	_ "github.com/dgc-labs/dgc/internal/tablestore"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	builtinComponentLib bool
	verbose             bool

	// logger is replaced in PersistentPreRunE once config is loaded.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` inspects the component types available to an orchestration project,
emits the JSON Schema for its component files, and manages the parquet tables its
I/O managers write.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		l, err := logging.New(config.Get(config.KeyLogLevel), verbose)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("starting command",
			zap.String("command", cmd.CommandPath()),
			zap.String("version", buildVersion))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&builtinComponentLib, "builtin-component-lib", false, "Include the built-in component library in discovery")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	if err := config.BindFlag(config.KeyBuiltinComponentLib, flags.Lookup("builtin-component-lib")); err != nil {
		panic(err)
	}
}

// includeBuiltin reports whether the built-in library takes part in
// discovery. The flag wins over the config file and DGC_BUILTIN_COMPONENT_LIB.
func includeBuiltin() bool {
	return config.GetBool(config.KeyBuiltinComponentLib)
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
