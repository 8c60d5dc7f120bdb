package frame

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
)

// Predicate returns a keep-mask for the rows of rec.
type Predicate func(ctx context.Context, rec arrow.Record) (arrow.Array, error)

// ScanOptions describe what a scan should return. A zero Limit means no limit.
type ScanOptions struct {
	Columns []string
	Filter  Predicate
	Limit   int64
}

// Scanner is a lazily scannable data source.
type Scanner interface {
	Schema() *arrow.Schema
	Scan(ctx context.Context, opts ScanOptions) (array.RecordReader, error)
}

// LazyFrame is a deferred query over a Scanner or a materialized Frame.
type LazyFrame struct {
	scanner Scanner
	frame   *Frame
	opts    ScanOptions
	empty   bool
}

// Scan starts a lazy plan over s.
func Scan(s Scanner) *LazyFrame {
	return &LazyFrame{scanner: s}
}

// Pushdown reports whether operations reach the data source.
func (lf *LazyFrame) Pushdown() bool {
	return lf.scanner != nil
}

// Select keeps only the named columns, in the given order.
func (lf *LazyFrame) Select(columns ...string) *LazyFrame {
	next := *lf
	next.opts.Columns = append([]string(nil), columns...)
	return &next
}

// Filter keeps rows for which p is true. Filters compose with AND.
func (lf *LazyFrame) Filter(p Predicate) *LazyFrame {
	next := *lf
	prev := lf.opts.Filter
	if prev == nil {
		next.opts.Filter = p
		return &next
	}
	next.opts.Filter = func(ctx context.Context, rec arrow.Record) (arrow.Array, error) {
		a, err := prev(ctx, rec)
		if err != nil {
			return nil, err
		}
		defer a.Release()
		b, err := p(ctx, rec)
		if err != nil {
			return nil, err
		}
		defer b.Release()
		out, err := compute.CallFunction(ctx, "and_kleene", nil, compute.NewDatum(a), compute.NewDatum(b))
		if err != nil {
			return nil, fmt.Errorf("combining filters: %w", err)
		}
		defer out.Release()
		return out.(*compute.ArrayDatum).MakeArray(), nil
	}
	return &next
}

// Limit keeps at most n rows. A limit of zero or less keeps none.
func (lf *LazyFrame) Limit(n int64) *LazyFrame {
	next := *lf
	if n <= 0 {
		next.empty = true
		return &next
	}
	if next.opts.Limit == 0 || n < next.opts.Limit {
		next.opts.Limit = n
	}
	return &next
}

// Options returns the recorded plan.
func (lf *LazyFrame) Options() ScanOptions {
	return lf.opts
}

// Collect runs the plan and materializes the result.
func (lf *LazyFrame) Collect(ctx context.Context) (*Frame, error) {
	if lf.empty {
		var full *arrow.Schema
		if lf.scanner != nil {
			full = lf.scanner.Schema()
		} else {
			full = lf.frame.Schema()
		}
		schema, err := ProjectSchema(full, lf.opts.Columns)
		if err != nil {
			return nil, err
		}
		return FromRecords(schema, nil), nil
	}
	if lf.scanner != nil {
		rdr, err := lf.scanner.Scan(ctx, lf.opts)
		if err != nil {
			return nil, fmt.Errorf("scanning: %w", err)
		}
		defer rdr.Release()
		return FromReader(rdr)
	}

	rdr := lf.frame.Reader()
	defer rdr.Release()
	out, err := ApplyScan(ctx, rdr, lf.opts)
	if err != nil {
		return nil, err
	}
	defer out.Release()
	return FromReader(out)
}

// ApplyScan applies opts to every batch of rdr in memory.
func ApplyScan(ctx context.Context, rdr array.RecordReader, opts ScanOptions) (array.RecordReader, error) {
	schema, err := ProjectSchema(rdr.Schema(), opts.Columns)
	if err != nil {
		return nil, err
	}

	var recs []arrow.Record
	release := func() {
		for _, r := range recs {
			r.Release()
		}
	}
	remaining := opts.Limit
	for rdr.Next() {
		if opts.Limit > 0 && remaining <= 0 {
			break
		}
		rec, err := ApplyRecord(ctx, rdr.Record(), schema, opts.Filter)
		if err != nil {
			release()
			return nil, err
		}
		if opts.Limit > 0 {
			if rec.NumRows() > remaining {
				sliced := rec.NewSlice(0, remaining)
				rec.Release()
				rec = sliced
			}
			remaining -= rec.NumRows()
		}
		recs = append(recs, rec)
	}
	if err := rdr.Err(); err != nil {
		release()
		return nil, fmt.Errorf("reading record batches: %w", err)
	}

	out, err := array.NewRecordReader(schema, recs)
	release()
	if err != nil {
		return nil, fmt.Errorf("building record reader: %w", err)
	}
	return out, nil
}

// ApplyRecord filters rec and projects it onto schema. The result is owned by
// the caller.
func ApplyRecord(ctx context.Context, rec arrow.Record, schema *arrow.Schema, filter Predicate) (arrow.Record, error) {
	rec.Retain()
	if filter != nil {
		mask, err := filter(ctx, rec)
		if err != nil {
			rec.Release()
			return nil, fmt.Errorf("evaluating filter: %w", err)
		}
		filtered, err := compute.FilterRecordBatch(ctx, rec, mask, compute.DefaultFilterOptions())
		mask.Release()
		rec.Release()
		if err != nil {
			return nil, fmt.Errorf("filtering batch: %w", err)
		}
		rec = filtered
	}
	defer rec.Release()

	cols := make([]arrow.Array, schema.NumFields())
	for i, field := range schema.Fields() {
		idx := rec.Schema().FieldIndices(field.Name)
		if len(idx) == 0 {
			return nil, fmt.Errorf("column %q not found", field.Name)
		}
		cols[i] = rec.Column(idx[0])
	}
	return array.NewRecord(schema, cols, rec.NumRows()), nil
}

// ProjectSchema returns the schema restricted to columns, or schema itself
// when columns is empty.
func ProjectSchema(schema *arrow.Schema, columns []string) (*arrow.Schema, error) {
	if len(columns) == 0 {
		return schema, nil
	}
	fields := make([]arrow.Field, 0, len(columns))
	for _, name := range columns {
		idx := schema.FieldIndices(name)
		if len(idx) == 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
		fields = append(fields, schema.Field(idx[0]))
	}
	md := schema.Metadata()
	return arrow.NewSchema(fields, &md), nil
}
