package tablestore

import "github.com/dgc-labs/dgc/internal/component"

// LibraryName is the package segment of the table component types.
const LibraryName = "dgc_table"

func init() {
	component.RegisterLibrary(component.Library{
		Name: LibraryName,
		Types: []component.Descriptor{
			{
				Name:        "table_io_manager",
				Summary:     "Stores asset outputs as parquet tables.",
				Description: "Writes gota DataFrames, Frames or Arrow tables as parquet part files on local disk or S3, and loads them back.",
				Params:      StoreConfig{},
				Metadata:    map[string]any{"supported_dataframes": []string{DataframeGota, DataframeFrame}},
			},
		},
	})
}
