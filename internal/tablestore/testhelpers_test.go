package tablestore

import (
	"context"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	objects, err := NewFSObjectStore(t.TempDir())
	require.NoError(t, err)
	return NewStore(objects, opts...)
}

// peopleTable builds an id/name table; nil names become nulls.
func peopleTable(t *testing.T, nameType arrow.DataType, ids []int64, names []*string) arrow.Table {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "name", Type: nameType, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues(ids, nil)
	for _, n := range names {
		switch nb := b.Field(1).(type) {
		case *array.StringBuilder:
			if n == nil {
				nb.AppendNull()
			} else {
				nb.Append(*n)
			}
		case *array.LargeStringBuilder:
			if n == nil {
				nb.AppendNull()
			} else {
				nb.Append(*n)
			}
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	t.Cleanup(tbl.Release)
	return tbl
}

func strp(s string) *string { return &s }

func requireTablesEqual(t *testing.T, want, got arrow.Table) {
	t.Helper()
	require.Equal(t, want.NumCols(), got.NumCols(), "column count")
	require.Equal(t, want.NumRows(), got.NumRows(), "row count")
	for i := 0; i < int(want.NumCols()); i++ {
		wc, gc := want.Column(i), got.Column(i)
		require.Equal(t, wc.Name(), gc.Name())
		require.True(t, arrow.TypeEqual(wc.DataType(), gc.DataType()),
			"column %s: type %s, want %s", wc.Name(), gc.DataType(), wc.DataType())
		require.True(t, array.ChunkedEqual(wc.Data(), gc.Data()), "column %s values differ", wc.Name())
	}
}

// countingObjects counts Get calls on an inner store.
type countingObjects struct {
	ObjectStore
	mu   sync.Mutex
	gets int
}

func (c *countingObjects) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.ObjectStore.Get(ctx, key)
}

var (
	stringType      = arrow.BinaryTypes.String
	largeStringType = arrow.BinaryTypes.LargeString
)
