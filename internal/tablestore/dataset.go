package tablestore

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/dgc-labs/dgc/internal/frame"
	"golang.org/x/sync/errgroup"
)

// Dataset is a lazily scanned table. It implements frame.Scanner.
type Dataset struct {
	store  *Store
	slice  TableSlice
	parts  []string
	schema *arrow.Schema
}

// Schema returns the full stored schema.
func (d *Dataset) Schema() *arrow.Schema { return d.schema }

// Parts returns the part keys in scan order.
func (d *Dataset) Parts() []string { return append([]string(nil), d.parts...) }

// Name returns "schema.table".
func (d *Dataset) Name() string { return d.slice.Name() }

// Scan reads the dataset. Part files are fetched concurrently and decoded in
// order; only the requested columns are decoded unless a filter needs others.
func (d *Dataset) Scan(ctx context.Context, opts frame.ScanOptions) (array.RecordReader, error) {
	columns := opts.Columns
	if len(columns) == 0 {
		columns = d.slice.Columns
	}
	out, err := frame.ProjectSchema(d.schema, columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name(), err)
	}
	filters := make([]frame.Predicate, 0, 2)
	for _, f := range []frame.Predicate{d.slice.Filter, opts.Filter} {
		if f != nil {
			filters = append(filters, f)
		}
	}
	decodeCols := columns
	if len(filters) > 0 {
		decodeCols = nil
	}

	blobs, err := d.fetch(ctx)
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

	for i, data := range blobs {
		if opts.Limit > 0 && remaining <= 0 {
			break
		}
		_, rr, err := openPart(ctx, data, decodeCols)
		if err != nil {
			release()
			return nil, fmt.Errorf("%s: %w", d.parts[i], err)
		}
		for rr.Next() && (opts.Limit == 0 || remaining > 0) {
			rec, err := applyFilters(ctx, rr.Record(), filters)
			if err != nil {
				rr.Release()
				release()
				return nil, err
			}
			projected, err := frame.ApplyRecord(ctx, rec, out, nil)
			rec.Release()
			if err != nil {
				rr.Release()
				release()
				return nil, err
			}
			if opts.Limit > 0 {
				if projected.NumRows() > remaining {
					sliced := projected.NewSlice(0, remaining)
					projected.Release()
					projected = sliced
				}
				remaining -= projected.NumRows()
			}
			recs = append(recs, projected)
		}
		err = rr.Err()
		rr.Release()
		if err != nil {
			release()
			return nil, fmt.Errorf("%s: %w", d.parts[i], err)
		}
	}

	rdr, err := array.NewRecordReader(out, recs)
	release()
	if err != nil {
		return nil, fmt.Errorf("building record reader: %w", err)
	}
	return rdr, nil
}

func (d *Dataset) fetch(ctx context.Context) ([][]byte, error) {
	blobs := make([][]byte, len(d.parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.store.fetchLimit)
	for i, key := range d.parts {
		g.Go(func() error {
			data, err := d.store.objects.Get(gctx, key)
			if err != nil {
				return err
			}
			blobs[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching parts of %s: %w", d.Name(), err)
	}
	return blobs, nil
}

// applyFilters returns rec filtered by every predicate; the result is owned by the caller.
func applyFilters(ctx context.Context, rec arrow.Record, filters []frame.Predicate) (arrow.Record, error) {
	rec.Retain()
	for _, f := range filters {
		next, err := frame.ApplyRecord(ctx, rec, rec.Schema(), f)
		rec.Release()
		if err != nil {
			return nil, err
		}
		rec = next
	}
	return rec, nil
}
