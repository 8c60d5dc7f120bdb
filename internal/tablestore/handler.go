package tablestore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/dgc-labs/dgc/internal/frame"
)

// Source is what a handler reads from: either a lazily scannable dataset or
// an already materialized batch reader.
type Source struct {
	Dataset frame.Scanner
	Reader  array.RecordReader
}

// IsMaterialized reports whether the source is a plain batch reader.
func (s Source) IsMaterialized() bool {
	return s.Dataset == nil
}

// Read returns a batch reader over the source, scanning a dataset first.
// The caller releases the returned reader.
func (s Source) Read(ctx context.Context) (array.RecordReader, error) {
	if s.Dataset != nil {
		return s.Dataset.Scan(ctx, frame.ScanOptions{})
	}
	if s.Reader == nil {
		return nil, fmt.Errorf("empty table source")
	}
	s.Reader.Retain()
	return s.Reader, nil
}

// TypeHandler converts one family of in-memory types to and from Arrow.
type TypeHandler interface {
	SupportedTypes() []reflect.Type
	FromArrow(ctx context.Context, src Source, target reflect.Type) (any, error)
	// ToArrow returns the data as batches plus write hints for the store.
	ToArrow(ctx context.Context, obj any) (array.RecordReader, map[string]any, error)
}

// OutputStatser is implemented by handlers that report metadata about the
// values they write.
type OutputStatser interface {
	OutputStats(obj any) map[string]any
}

// DatasetLoader is implemented by handlers that want the unscanned dataset
// for some targets so they can defer reading.
type DatasetLoader interface {
	WantsDataset(target reflect.Type) bool
}

// handles reports whether st covers t, matching interfaces by implementation.
func handles(st, t reflect.Type) bool {
	if st == t {
		return true
	}
	return st.Kind() == reflect.Interface && t.Implements(st)
}

// readTable is the shared scan-then-read step: it drains src into a table.
func readTable(ctx context.Context, src Source) (arrow.Table, error) {
	rdr, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}
	defer rdr.Release()
	f, err := frame.FromReader(rdr)
	if err != nil {
		return nil, err
	}
	return f.Table(), nil
}

// exportTable is the shared export step: it exposes a realized table as batches.
func exportTable(tbl arrow.Table) array.RecordReader {
	return array.NewTableReader(tbl, readBatchSize)
}
