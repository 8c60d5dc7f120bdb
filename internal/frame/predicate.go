package frame

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/scalar"
)

// Comparison kernels usable with Compare.
const (
	OpEqual        = "equal"
	OpNotEqual     = "not_equal"
	OpGreater      = "greater"
	OpGreaterEqual = "greater_equal"
	OpLess         = "less"
	OpLessEqual    = "less_equal"
)

// Compare builds a predicate comparing column against value with op.
func Compare(op, column string, value scalar.Scalar) Predicate {
	return func(ctx context.Context, rec arrow.Record) (arrow.Array, error) {
		idx := rec.Schema().FieldIndices(column)
		if len(idx) == 0 {
			return nil, fmt.Errorf("column %q not found", column)
		}
		out, err := compute.CallFunction(ctx, op, nil,
			compute.NewDatum(rec.Column(idx[0])), compute.NewDatum(value))
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", op, column, err)
		}
		defer out.Release()
		return out.(*compute.ArrayDatum).MakeArray(), nil
	}
}
