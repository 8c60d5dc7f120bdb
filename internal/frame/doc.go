// Package frame provides an eager Frame and a LazyFrame over Arrow tables.
//
// A LazyFrame records a projection, a row filter and a limit. When it is
// backed by a Scanner those operations are handed to the scanner so the
// storage layer can skip data; when it is backed by an already materialized
// table they are applied in memory.
package frame
