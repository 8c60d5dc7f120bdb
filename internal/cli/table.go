package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dgc-labs/dgc/internal/config"
	"github.com/dgc-labs/dgc/internal/frame"
	"github.com/dgc-labs/dgc/internal/tablestore"
	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	headRows    int64
	headColumns []string
	headCSV     bool
)

func init() {
	tableHeadCmd.Flags().Int64VarP(&headRows, "rows", "n", 10, "Number of rows to show")
	tableHeadCmd.Flags().StringSliceVar(&headColumns, "columns", nil, "Columns to show (default: all)")
	tableHeadCmd.Flags().BoolVar(&headCSV, "csv", false, "Print rows as CSV")

	tableCmd.AddCommand(tableListCmd)
	tableCmd.AddCommand(tableHeadCmd)
	tableCmd.AddCommand(tableImportCmd)
	tableCmd.AddCommand(tableDropCmd)
	rootCmd.AddCommand(tableCmd)
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Inspect the parquet tables written by the table I/O manager",
	Long: `Inspect the tables stored under table.root (local backend) or in the
configured S3 bucket (table.backend=s3).`,
}

var tableListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := tablestore.OpenStore(storeConfig(), logger)
		if err != nil {
			return err
		}
		return listTables(cmd.Context(), cmd.OutOrStdout(), store)
	},
}

var tableHeadCmd = &cobra.Command{
	Use:   "head <schema.table>",
	Short: "Show the first rows of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slice, err := tablestore.ParseTableName(args[0])
		if err != nil {
			return err
		}
		store, err := tablestore.OpenStore(storeConfig(), logger)
		if err != nil {
			return err
		}
		return headTable(cmd.Context(), cmd.OutOrStdout(), store, slice, headColumns, headRows, headCSV)
	},
}

var tableImportCmd = &cobra.Command{
	Use:   "import <file.csv> <schema.table>",
	Short: "Load a CSV file into a table",
	Long:  `Read a CSV file into a DataFrame and store it through the table I/O manager, replacing any existing table.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		slice, err := tablestore.ParseTableName(args[1])
		if err != nil {
			return err
		}
		store, err := tablestore.OpenStore(storeConfig(), logger)
		if err != nil {
			return err
		}
		return importCSV(cmd.Context(), cmd.OutOrStdout(), store, args[0], slice)
	},
}

var tableDropCmd = &cobra.Command{
	Use:   "drop <schema.table>",
	Short: "Delete a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slice, err := tablestore.ParseTableName(args[0])
		if err != nil {
			return err
		}
		store, err := tablestore.OpenStore(storeConfig(), logger)
		if err != nil {
			return err
		}
		if err := store.Drop(cmd.Context(), slice); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dropped %s\n", slice.Name())
		return nil
	},
}

// storeConfig reads the table settings from config and environment.
func storeConfig() tablestore.StoreConfig {
	cfg := tablestore.StoreConfig{
		Backend:   config.Get(config.KeyTableBackend),
		Root:      config.Get(config.KeyTableRoot),
		CacheSize: config.GetInt(config.KeyTableCacheSize),
	}
	if cfg.Backend == tablestore.BackendS3 {
		cfg.S3 = &tablestore.S3Config{
			Endpoint:  config.Get(config.KeyS3Endpoint),
			Region:    config.Get(config.KeyS3Region),
			AccessKey: config.Get(config.KeyS3AccessKey),
			SecretKey: config.Get(config.KeyS3SecretKey),
			Bucket:    config.Get(config.KeyS3Bucket),
			UseSSL:    config.GetBool(config.KeyS3UseSSL),
		}
	}
	return cfg
}

func listTables(ctx context.Context, w io.Writer, store *tablestore.Store) error {
	names, err := store.Tables(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No tables stored yet.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

func headTable(ctx context.Context, w io.Writer, store *tablestore.Store, slice tablestore.TableSlice, columns []string, n int64, asCSV bool) error {
	if n < 0 {
		return fmt.Errorf("invalid row count %d: must be zero or more", n)
	}
	mgr := tablestore.NewFrameIOManager(store, logger)
	lf, err := tablestore.Load[*frame.LazyFrame](ctx, mgr, slice)
	if err != nil {
		return err
	}
	if len(columns) > 0 {
		lf = lf.Select(columns...)
	}
	f, err := lf.Limit(n).Collect(ctx)
	if err != nil {
		return err
	}
	defer f.Release()

	rdr := f.Reader()
	defer rdr.Release()
	v, err := tablestore.GotaHandler{}.FromArrow(ctx, tablestore.Source{Reader: rdr}, nil)
	if err != nil {
		return err
	}
	df := v.(dataframe.DataFrame)
	if asCSV {
		return df.WriteCSV(w)
	}
	fmt.Fprintln(w, df.String())
	return nil
}

func importCSV(ctx context.Context, w io.Writer, store *tablestore.Store, path string, slice tablestore.TableSlice) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return fmt.Errorf("reading %s: %w", path, df.Err)
	}

	record, err := tablestore.NewGotaIOManager(store, logger).HandleOutput(ctx, slice, df)
	if err != nil {
		return err
	}
	logger.Debug("imported csv", zap.String("path", path), zap.String("table", slice.Name()))
	return writeJSON(w, record)
}
