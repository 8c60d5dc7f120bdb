package tablestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

const (
	readBatchSize = 64 * 1024
	fieldIDKey    = "PARQUET:field_id"
)

// partWriter encodes record batches into one in-memory parquet file.
type partWriter struct {
	buf  bytes.Buffer
	w    *pqarrow.FileWriter
	rows int64
}

func newPartWriter(schema *arrow.Schema) (*partWriter, error) {
	pw := &partWriter{}
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	w, err := pqarrow.NewFileWriter(schema, &pw.buf, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.w = w
	return pw, nil
}

func (pw *partWriter) write(rec arrow.Record) error {
	if err := pw.w.Write(rec); err != nil {
		return fmt.Errorf("writing parquet batch: %w", err)
	}
	pw.rows += rec.NumRows()
	return nil
}

func (pw *partWriter) finish() ([]byte, error) {
	if err := pw.w.Close(); err != nil {
		return nil, fmt.Errorf("closing parquet writer: %w", err)
	}
	return pw.buf.Bytes(), nil
}

// openPart decodes a parquet part. When columns is non-empty only those
// top-level columns are read.
func openPart(ctx context.Context, data []byte, columns []string) (*arrow.Schema, array.RecordReader, error) {
	pf, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("opening parquet part: %w", err)
	}
	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: readBatchSize}, memory.DefaultAllocator)
	if err != nil {
		pf.Close()
		return nil, nil, fmt.Errorf("reading parquet part: %w", err)
	}
	schema, err := fr.Schema()
	if err != nil {
		pf.Close()
		return nil, nil, fmt.Errorf("reading parquet schema: %w", err)
	}
	schema = stripFieldIDs(schema)

	var indices []int
	for _, name := range columns {
		idx := pf.MetaData().Schema.ColumnIndexByName(name)
		if idx < 0 {
			// Nested or unknown; read everything and project later.
			indices = nil
			break
		}
		indices = append(indices, idx)
	}

	rr, err := fr.GetRecordReader(ctx, indices, nil)
	if err != nil {
		pf.Close()
		return nil, nil, fmt.Errorf("reading parquet records: %w", err)
	}
	return schema, &partReader{RecordReader: rr, file: pf}, nil
}

// partReader closes the parquet file once the reader is released.
type partReader struct {
	array.RecordReader
	file *file.Reader
}

// Err reports the first read failure. pqarrow reports io.EOF once the
// last row group is consumed, which is a clean end of stream here.
func (r *partReader) Err() error {
	if err := r.RecordReader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (r *partReader) Release() {
	r.RecordReader.Release()
	r.file.Close()
}

// stripFieldIDs drops the parquet field ids the reader attaches to top-level
// fields, so a stored schema compares equal to the one that was written.
func stripFieldIDs(schema *arrow.Schema) *arrow.Schema {
	fields := append([]arrow.Field(nil), schema.Fields()...)
	changed := false
	for i, f := range fields {
		idx := f.Metadata.FindKey(fieldIDKey)
		if idx < 0 {
			continue
		}
		keys := append([]string(nil), f.Metadata.Keys()...)
		vals := append([]string(nil), f.Metadata.Values()...)
		keys = append(keys[:idx], keys[idx+1:]...)
		vals = append(vals[:idx], vals[idx+1:]...)
		fields[i].Metadata = arrow.NewMetadata(keys, vals)
		changed = true
	}
	if !changed {
		return schema
	}
	md := schema.Metadata()
	return arrow.NewSchema(fields, &md)
}

// widenSchema swaps utf8 and binary columns for their 64-bit offset variants.
func widenSchema(schema *arrow.Schema) (*arrow.Schema, bool) {
	fields := append([]arrow.Field(nil), schema.Fields()...)
	changed := false
	for i, f := range fields {
		switch f.Type.ID() {
		case arrow.STRING:
			fields[i].Type = arrow.BinaryTypes.LargeString
			changed = true
		case arrow.BINARY:
			fields[i].Type = arrow.BinaryTypes.LargeBinary
			changed = true
		}
	}
	if !changed {
		return schema, false
	}
	md := schema.Metadata()
	return arrow.NewSchema(fields, &md), true
}

// widenRecord casts rec onto the widened schema.
func widenRecord(ctx context.Context, rec arrow.Record, widened *arrow.Schema) (arrow.Record, error) {
	cols := make([]arrow.Array, rec.NumCols())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i := range cols {
		col := rec.Column(i)
		want := widened.Field(i).Type
		if arrow.TypeEqual(col.DataType(), want) {
			col.Retain()
			cols[i] = col
			continue
		}
		cast, err := compute.CastArray(ctx, col, compute.SafeCastOptions(want))
		if err != nil {
			return nil, fmt.Errorf("widening column %s: %w", widened.Field(i).Name, err)
		}
		cols[i] = cast
	}
	return array.NewRecord(widened, cols, rec.NumRows()), nil
}
