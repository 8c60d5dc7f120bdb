package tablestore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/dgc-labs/dgc/internal/frame"
	"go.uber.org/zap"
)

var (
	frameType     = reflect.TypeOf((*frame.Frame)(nil))
	lazyFrameType = reflect.TypeOf((*frame.LazyFrame)(nil))
)

// FrameHandler converts Frames and LazyFrames. Writes ask the store for
// large string and binary columns.
type FrameHandler struct {
	Logger *zap.Logger
}

func (h FrameHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (FrameHandler) SupportedTypes() []reflect.Type {
	return []reflect.Type{frameType, lazyFrameType}
}

// WantsDataset asks for the unscanned dataset when loading a LazyFrame.
func (FrameHandler) WantsDataset(target reflect.Type) bool {
	return target == lazyFrameType
}

func (h FrameHandler) FromArrow(ctx context.Context, src Source, target reflect.Type) (any, error) {
	if !src.IsMaterialized() {
		lf := frame.Scan(src.Dataset)
		if target == lazyFrameType {
			return lf, nil
		}
		return lf.Collect(ctx)
	}

	rdr, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}
	defer rdr.Release()
	f, err := frame.FromReader(rdr)
	if err != nil {
		return nil, err
	}
	if target == lazyFrameType {
		h.logger().Warn("loading a LazyFrame from already materialized batches; filters will not reach storage",
			zap.Int64("rows", f.NumRows()))
		return f.Lazy(), nil
	}
	return f, nil
}

func (FrameHandler) ToArrow(ctx context.Context, obj any) (array.RecordReader, map[string]any, error) {
	var f *frame.Frame
	switch v := obj.(type) {
	case *frame.Frame:
		f = v
	case *frame.LazyFrame:
		collected, err := v.Collect(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("collecting lazy frame: %w", err)
		}
		defer collected.Release()
		f = collected
	default:
		return nil, nil, fmt.Errorf("frame handler cannot write %T", obj)
	}
	return exportTable(f.Table()), map[string]any{HintLargeDtypes: true}, nil
}
