// Package tablestore persists Arrow tables as parquet part files on an object
// store and converts them to and from in-memory dataframe types.
//
// A table lives under "<schema>/<table>/" as one or more part files. Writes
// replace every part of the table. Type handlers adapt Arrow data to gota
// DataFrames, Frames and LazyFrames, and plain Arrow tables; TableIOManager
// picks the handler for a value by its Go type.
package tablestore
