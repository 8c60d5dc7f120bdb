package tablestore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var dataFrameType = reflect.TypeOf(dataframe.DataFrame{})

// GotaHandler converts gota DataFrames. Int, float, string and bool columns
// are supported; NaN elements map to Arrow nulls.
type GotaHandler struct{}

func (GotaHandler) SupportedTypes() []reflect.Type {
	return []reflect.Type{dataFrameType}
}

func (GotaHandler) OutputStats(obj any) map[string]any {
	df, ok := obj.(dataframe.DataFrame)
	if !ok {
		return nil
	}
	return map[string]any{"source_num_rows": df.Nrow()}
}

func (GotaHandler) FromArrow(ctx context.Context, src Source, _ reflect.Type) (any, error) {
	tbl, err := readTable(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()
	return tableToDataFrame(tbl)
}

func (GotaHandler) ToArrow(_ context.Context, obj any) (array.RecordReader, map[string]any, error) {
	df, ok := obj.(dataframe.DataFrame)
	if !ok {
		return nil, nil, fmt.Errorf("gota handler cannot write %T", obj)
	}
	if df.Err != nil {
		return nil, nil, fmt.Errorf("dataframe carries an error: %w", df.Err)
	}
	tbl, err := dataFrameToTable(df)
	if err != nil {
		return nil, nil, err
	}
	defer tbl.Release()
	return exportTable(tbl), map[string]any{}, nil
}

func dataFrameToTable(df dataframe.DataFrame) (arrow.Table, error) {
	names := df.Names()
	fields := make([]arrow.Field, len(names))
	cols := make([]arrow.Array, len(names))
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()

	for i, name := range names {
		s := df.Col(name)
		col, dt, err := seriesToArray(s)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: true}
		cols[i] = col
	}

	schema := arrow.NewSchema(fields, nil)
	rec := array.NewRecord(schema, cols, int64(df.Nrow()))
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

func seriesToArray(s series.Series) (arrow.Array, arrow.DataType, error) {
	mem := memory.DefaultAllocator
	n := s.Len()
	switch s.Type() {
	case series.Int:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				b.AppendNull()
				continue
			}
			v, err := e.Int()
			if err != nil {
				return nil, nil, err
			}
			b.Append(int64(v))
		}
		return b.NewArray(), arrow.PrimitiveTypes.Int64, nil
	case series.Float:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				b.AppendNull()
				continue
			}
			b.Append(e.Float())
		}
		return b.NewArray(), arrow.PrimitiveTypes.Float64, nil
	case series.Bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				b.AppendNull()
				continue
			}
			v, err := e.Bool()
			if err != nil {
				return nil, nil, err
			}
			b.Append(v)
		}
		return b.NewArray(), arrow.FixedWidthTypes.Boolean, nil
	case series.String:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				b.AppendNull()
				continue
			}
			b.Append(e.String())
		}
		return b.NewArray(), arrow.BinaryTypes.String, nil
	default:
		return nil, nil, fmt.Errorf("unsupported series type %s", s.Type())
	}
}

func tableToDataFrame(tbl arrow.Table) (dataframe.DataFrame, error) {
	cols := make([]series.Series, 0, tbl.NumCols())
	for i := 0; i < int(tbl.NumCols()); i++ {
		col := tbl.Column(i)
		s, err := chunkedToSeries(col.Name(), col.Data())
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		cols = append(cols, s)
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}

func chunkedToSeries(name string, data *arrow.Chunked) (series.Series, error) {
	var t series.Type
	switch data.DataType().ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		t = series.Int
	case arrow.FLOAT32, arrow.FLOAT64:
		t = series.Float
	case arrow.BOOL:
		t = series.Bool
	case arrow.STRING, arrow.LARGE_STRING:
		t = series.String
	default:
		return series.Series{}, fmt.Errorf("unsupported arrow type %s", data.DataType())
	}

	values := make([]interface{}, 0, data.Len())
	for _, chunk := range data.Chunks() {
		for i := 0; i < chunk.Len(); i++ {
			if chunk.IsNull(i) {
				values = append(values, nil)
				continue
			}
			values = append(values, scalarValue(chunk, i))
		}
	}
	return series.New(values, t, name), nil
}

func scalarValue(arr arrow.Array, i int) interface{} {
	switch a := arr.(type) {
	case *array.Int8:
		return int(a.Value(i))
	case *array.Int16:
		return int(a.Value(i))
	case *array.Int32:
		return int(a.Value(i))
	case *array.Int64:
		return int(a.Value(i))
	case *array.Uint8:
		return int(a.Value(i))
	case *array.Uint16:
		return int(a.Value(i))
	case *array.Uint32:
		return int(a.Value(i))
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	default:
		return nil
	}
}
