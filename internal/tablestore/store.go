package tablestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/dgc-labs/dgc/internal/frame"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrTableNotFound is returned when a table has no part files.
var ErrTableNotFound = errors.New("table not found")

const (
	partSuffix        = ".parquet"
	defaultPartRows   = 1 << 20
	defaultFetchLimit = 4

	// HintLargeDtypes asks the store to widen utf8 and binary columns.
	HintLargeDtypes = "large_dtypes"
)

// TableSlice addresses a table and, for reads, the part of it to load.
type TableSlice struct {
	Schema  string
	Table   string
	Columns []string
	Filter  frame.Predicate
}

// ParseTableName parses "schema.table".
func ParseTableName(name string) (TableSlice, error) {
	schema, table, ok := strings.Cut(name, ".")
	if !ok || schema == "" || table == "" || strings.Contains(table, ".") {
		return TableSlice{}, fmt.Errorf("invalid table name %q: want <schema>.<table>", name)
	}
	return TableSlice{Schema: schema, Table: table}, nil
}

// Name returns "schema.table".
func (s TableSlice) Name() string {
	return s.Schema + "." + s.Table
}

func (s TableSlice) prefix() string {
	return s.Schema + "/" + s.Table + "/"
}

// WriteResult describes a completed write.
type WriteResult struct {
	URI      string
	RowCount int64
	Parts    []string
}

// Store keeps tables as parquet part files on an ObjectStore.
type Store struct {
	objects    ObjectStore
	logger     *zap.Logger
	partRows   int64
	fetchLimit int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPartRows caps the number of rows per part file.
func WithPartRows(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.partRows = n
		}
	}
}

// NewStore returns a store over objects.
func NewStore(objects ObjectStore, opts ...Option) *Store {
	s := &Store{
		objects:    objects,
		logger:     zap.NewNop(),
		partRows:   defaultPartRows,
		fetchLimit: defaultFetchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URI returns the location of a table.
func (s *Store) URI(slice TableSlice) string {
	return s.objects.URI(slice.prefix())
}

// Write replaces the table with the batches of rdr. New parts are written
// before old ones are removed; a failed write removes the parts it added and
// leaves the previous table in place.
func (s *Store) Write(ctx context.Context, slice TableSlice, rdr array.RecordReader, hints map[string]any) (*WriteResult, error) {
	old, err := s.parts(ctx, slice)
	if err != nil {
		return nil, err
	}

	schema := rdr.Schema()
	widen := false
	if large, _ := hints[HintLargeDtypes].(bool); large {
		schema, widen = widenSchema(schema)
	}

	result := &WriteResult{URI: s.URI(slice)}
	if err := s.writeParts(ctx, slice, rdr, schema, widen, result); err != nil {
		s.discard(ctx, slice, result.Parts)
		return nil, err
	}

	for _, key := range old {
		if err := s.objects.Delete(ctx, key); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("table written",
		zap.String("table", slice.Name()),
		zap.Int64("rows", result.RowCount),
		zap.Int("parts", len(result.Parts)),
		zap.Bool("large_dtypes", widen))
	return result, nil
}

// writeParts encodes rdr into part files of at most partRows rows, recording
// each stored key in result.Parts.
func (s *Store) writeParts(ctx context.Context, slice TableSlice, rdr array.RecordReader, schema *arrow.Schema, widen bool, result *WriteResult) error {
	var pw *partWriter
	flush := func() error {
		data, err := pw.finish()
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%spart-%05d-%s%s", slice.prefix(), len(result.Parts), uuid.NewString(), partSuffix)
		if err := s.objects.Put(ctx, key, data); err != nil {
			return err
		}
		result.Parts = append(result.Parts, key)
		result.RowCount += pw.rows
		pw = nil
		return nil
	}

	var err error
	for rdr.Next() {
		rec := rdr.Record()
		if widen {
			if rec, err = widenRecord(ctx, rec, schema); err != nil {
				return err
			}
		} else {
			rec.Retain()
		}

		for off := int64(0); off < rec.NumRows(); {
			if pw == nil {
				if pw, err = newPartWriter(schema); err != nil {
					rec.Release()
					return err
				}
			}
			n := min(s.partRows-pw.rows, rec.NumRows()-off)
			chunk := rec.NewSlice(off, off+n)
			err := pw.write(chunk)
			chunk.Release()
			if err != nil {
				rec.Release()
				return err
			}
			off += n
			if pw.rows >= s.partRows {
				if err := flush(); err != nil {
					rec.Release()
					return err
				}
			}
		}
		rec.Release()
	}
	if err := rdr.Err(); err != nil {
		return fmt.Errorf("reading batches for %s: %w", slice.Name(), err)
	}

	// An empty table still gets one part so its schema survives.
	if pw == nil && len(result.Parts) == 0 {
		if pw, err = newPartWriter(schema); err != nil {
			return err
		}
	}
	if pw != nil {
		return flush()
	}
	return nil
}

// discard removes the parts of a failed write. It runs even when ctx is
// cancelled.
func (s *Store) discard(ctx context.Context, slice TableSlice, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.objects.Delete(ctx, key); err != nil {
			s.logger.Warn("removing part of failed write",
				zap.String("table", slice.Name()),
				zap.String("key", key),
				zap.Error(err))
		}
	}
}

// Open returns a lazily scanned dataset over the table. The slice's columns
// and filter apply to every scan.
func (s *Store) Open(ctx context.Context, slice TableSlice) (*Dataset, error) {
	parts, err := s.parts(ctx, slice)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, slice.Name())
	}

	data, err := s.objects.Get(ctx, parts[0])
	if err != nil {
		return nil, err
	}
	schema, rr, err := openPart(ctx, data, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", parts[0], err)
	}
	rr.Release()

	return &Dataset{
		store:  s,
		slice:  slice,
		parts:  parts,
		schema: schema,
	}, nil
}

// Drop removes every part of the table.
func (s *Store) Drop(ctx context.Context, slice TableSlice) error {
	parts, err := s.parts(ctx, slice)
	if err != nil {
		return err
	}
	for _, key := range parts {
		if err := s.objects.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Tables lists every stored table as "schema.table", sorted.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	keys, err := s.objects.List(ctx, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, key := range keys {
		dir, file := path.Split(key)
		parts := strings.Split(strings.TrimSuffix(dir, "/"), "/")
		if !strings.HasSuffix(file, partSuffix) || len(parts) != 2 {
			continue
		}
		name := parts[0] + "." + parts[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) parts(ctx context.Context, slice TableSlice) ([]string, error) {
	keys, err := s.objects.List(ctx, slice.prefix())
	if err != nil {
		return nil, err
	}
	var parts []string
	for _, key := range keys {
		rest := strings.TrimPrefix(key, slice.prefix())
		if strings.HasSuffix(rest, partSuffix) && !strings.Contains(rest, "/") {
			parts = append(parts, key)
		}
	}
	return parts, nil
}
