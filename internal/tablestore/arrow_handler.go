package tablestore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

var (
	tableType  = reflect.TypeOf((*arrow.Table)(nil)).Elem()
	readerType = reflect.TypeOf((*array.RecordReader)(nil)).Elem()
)

// ArrowHandler passes Arrow tables and record readers through unchanged.
type ArrowHandler struct{}

func (ArrowHandler) SupportedTypes() []reflect.Type {
	return []reflect.Type{tableType, readerType}
}

func (ArrowHandler) FromArrow(ctx context.Context, src Source, target reflect.Type) (any, error) {
	if handles(readerType, target) {
		return src.Read(ctx)
	}
	return readTable(ctx, src)
}

func (ArrowHandler) ToArrow(_ context.Context, obj any) (array.RecordReader, map[string]any, error) {
	switch v := obj.(type) {
	case arrow.Table:
		return exportTable(v), nil, nil
	case array.RecordReader:
		v.Retain()
		return v, nil, nil
	default:
		return nil, nil, fmt.Errorf("arrow handler cannot write %T", obj)
	}
}
