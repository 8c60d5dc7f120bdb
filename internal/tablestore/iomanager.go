package tablestore

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/dgc-labs/dgc/internal/frame"
	"go.uber.org/zap"
)

// ErrNoHandler is returned when no handler supports a Go type.
var ErrNoHandler = errors.New("no type handler")

// OutputRecord is the metadata of a stored output.
type OutputRecord struct {
	TableURI string         `json:"table_uri"`
	RowCount int64          `json:"row_count"`
	Stats    map[string]any `json:"stats,omitempty"`
}

// TableIOManager stores and loads values through the first handler that
// supports their type.
type TableIOManager struct {
	store       *Store
	handlers    []TypeHandler
	defaultType reflect.Type
	logger      *zap.Logger
}

// NewTableIOManager returns a manager using handlers in order.
func NewTableIOManager(store *Store, defaultType reflect.Type, logger *zap.Logger, handlers ...TypeHandler) *TableIOManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableIOManager{store: store, handlers: handlers, defaultType: defaultType, logger: logger}
}

// NewGotaIOManager loads gota DataFrames by default.
func NewGotaIOManager(store *Store, logger *zap.Logger) *TableIOManager {
	return NewTableIOManager(store, dataFrameType, logger, GotaHandler{}, ArrowHandler{})
}

// NewFrameIOManager loads Frames by default.
func NewFrameIOManager(store *Store, logger *zap.Logger) *TableIOManager {
	return NewTableIOManager(store, frameType, logger, FrameHandler{Logger: logger}, ArrowHandler{})
}

// DefaultLoadType is the type LoadInput produces when no target is given.
func (m *TableIOManager) DefaultLoadType() reflect.Type {
	return m.defaultType
}

// Store returns the underlying store.
func (m *TableIOManager) Store() *Store {
	return m.store
}

func (m *TableIOManager) handlerFor(t reflect.Type) (TypeHandler, error) {
	for _, h := range m.handlers {
		for _, st := range h.SupportedTypes() {
			if handles(st, t) {
				return h, nil
			}
		}
	}
	return nil, fmt.Errorf("%w for %s", ErrNoHandler, t)
}

// HandleOutput writes obj to the table addressed by slice.
func (m *TableIOManager) HandleOutput(ctx context.Context, slice TableSlice, obj any) (*OutputRecord, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w for nil output", ErrNoHandler)
	}
	h, err := m.handlerFor(reflect.TypeOf(obj))
	if err != nil {
		return nil, err
	}
	rdr, hints, err := h.ToArrow(ctx, obj)
	if err != nil {
		return nil, err
	}
	defer rdr.Release()

	res, err := m.store.Write(ctx, slice, rdr, hints)
	if err != nil {
		return nil, fmt.Errorf("writing %s: %w", slice.Name(), err)
	}

	record := &OutputRecord{TableURI: res.URI, RowCount: res.RowCount}
	if s, ok := h.(OutputStatser); ok {
		record.Stats = s.OutputStats(obj)
	}
	m.logger.Info("stored output",
		zap.String("table", slice.Name()),
		zap.String("uri", res.URI),
		zap.Int64("rows", res.RowCount))
	return record, nil
}

// LoadInput reads the table addressed by slice as target, or as the default
// load type when target is nil.
func (m *TableIOManager) LoadInput(ctx context.Context, slice TableSlice, target reflect.Type) (any, error) {
	if target == nil {
		target = m.defaultType
	}
	h, err := m.handlerFor(target)
	if err != nil {
		return nil, err
	}
	ds, err := m.store.Open(ctx, slice)
	if err != nil {
		return nil, err
	}

	if dl, ok := h.(DatasetLoader); ok && dl.WantsDataset(target) {
		return h.FromArrow(ctx, Source{Dataset: ds}, target)
	}

	rdr, err := ds.Scan(ctx, frame.ScanOptions{})
	if err != nil {
		return nil, err
	}
	defer rdr.Release()
	return h.FromArrow(ctx, Source{Reader: rdr}, target)
}

// Load is a typed LoadInput.
func Load[T any](ctx context.Context, m *TableIOManager, slice TableSlice) (T, error) {
	var zero T
	v, err := m.LoadInput(ctx, slice, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("loaded %T, want %T", v, zero)
	}
	return out, nil
}

var (
	_ TypeHandler   = ArrowHandler{}
	_ TypeHandler   = GotaHandler{}
	_ TypeHandler   = FrameHandler{}
	_ OutputStatser = GotaHandler{}
	_ DatasetLoader = FrameHandler{}
	_ frame.Scanner = (*Dataset)(nil)
)
