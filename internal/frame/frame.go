package frame

import (
	"context"
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

const readerChunkSize = 64 * 1024

// Frame is an eager, immutable table.
type Frame struct {
	table arrow.Table
}

// New wraps tbl. The frame takes its own reference.
func New(tbl arrow.Table) *Frame {
	tbl.Retain()
	return &Frame{table: tbl}
}

// FromRecords builds a frame from record batches sharing schema.
func FromRecords(schema *arrow.Schema, recs []arrow.Record) *Frame {
	return &Frame{table: array.NewTableFromRecords(schema, recs)}
}

// FromReader drains rdr into a frame.
func FromReader(rdr array.RecordReader) (*Frame, error) {
	var recs []arrow.Record
	defer func() {
		for _, r := range recs {
			r.Release()
		}
	}()
	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("reading record batches: %w", err)
	}
	return FromRecords(rdr.Schema(), recs), nil
}

// Table returns the underlying table. The caller must not release it.
func (f *Frame) Table() arrow.Table { return f.table }

// Schema returns the frame schema.
func (f *Frame) Schema() *arrow.Schema { return f.table.Schema() }

// NumRows returns the row count.
func (f *Frame) NumRows() int64 { return f.table.NumRows() }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	fields := f.table.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name
	}
	return names
}

// Reader exposes the frame as a record reader.
func (f *Frame) Reader() array.RecordReader {
	return array.NewTableReader(f.table, readerChunkSize)
}

// Lazy starts a lazy plan over the materialized frame.
func (f *Frame) Lazy() *LazyFrame {
	return &LazyFrame{frame: f}
}

// Equal reports whether both frames hold the same column names, types and
// values. Field metadata and chunk layout are ignored, and string and binary
// columns compare equal to their large-offset variants.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil {
		return false
	}
	a, b := f.table, other.table
	if a.NumCols() != b.NumCols() || a.NumRows() != b.NumRows() {
		return false
	}
	for i := 0; i < int(a.NumCols()); i++ {
		ac, bc := a.Column(i), b.Column(i)
		if ac.Name() != bc.Name() {
			return false
		}
		if arrow.TypeEqual(ac.DataType(), bc.DataType()) {
			if !array.ChunkedEqual(ac.Data(), bc.Data()) {
				return false
			}
			continue
		}
		if !sameWidthClass(ac.DataType(), bc.DataType()) || !slices.EqualFunc(byteValues(ac.Data()), byteValues(bc.Data()), equalPtr) {
			return false
		}
	}
	return true
}

// sameWidthClass reports whether a and b differ only in offset width.
func sameWidthClass(a, b arrow.DataType) bool {
	return narrowID(a) == narrowID(b) && (narrowID(a) == arrow.STRING || narrowID(a) == arrow.BINARY)
}

func narrowID(t arrow.DataType) arrow.Type {
	switch t.ID() {
	case arrow.LARGE_STRING:
		return arrow.STRING
	case arrow.LARGE_BINARY:
		return arrow.BINARY
	}
	return t.ID()
}

// byteValues flattens a string or binary column; nulls are nil.
func byteValues(c *arrow.Chunked) []*string {
	out := make([]*string, 0, c.Len())
	for _, chunk := range c.Chunks() {
		for j := 0; j < chunk.Len(); j++ {
			if chunk.IsNull(j) {
				out = append(out, nil)
				continue
			}
			var v string
			switch arr := chunk.(type) {
			case *array.String:
				v = arr.Value(j)
			case *array.LargeString:
				v = arr.Value(j)
			case *array.Binary:
				v = string(arr.Value(j))
			case *array.LargeBinary:
				v = string(arr.Value(j))
			}
			out = append(out, &v)
		}
	}
	return out
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Release drops the frame's reference to its table.
func (f *Frame) Release() {
	if f.table != nil {
		f.table.Release()
	}
}

// Head returns the first n rows.
func (f *Frame) Head(ctx context.Context, n int64) (*Frame, error) {
	return f.Lazy().Limit(n).Collect(ctx)
}
