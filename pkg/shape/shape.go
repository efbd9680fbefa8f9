package shape

import (
	"errors"
	"fmt"
	"reflect"
)

// ShapeError reports data that has no usable shape
type ShapeError struct {
	Reason string
	Type   string
}

func (e *ShapeError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("invalid shape (%s): %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("invalid shape: %s", e.Reason)
}

// MismatchError reports inputs and outputs with different row counts
type MismatchError struct {
	Inputs  int
	Outputs int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("input/output shape mismatch: %d in, %d out", e.Inputs, e.Outputs)
}

// IsShapeError reports whether err is (or wraps) a ShapeError
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

// IsMismatch reports whether err is (or wraps) a MismatchError
func IsMismatch(err error) bool {
	var me *MismatchError
	return errors.As(err, &me)
}

// Of returns the dimensions of data. A sequence of scalars has shape [rows],
// a sequence of fixed-length sequences has shape [rows, cols].
func Of(data any) ([]int, error) {
	if data == nil {
		return nil, &ShapeError{Reason: "nil data"}
	}

	v := reflect.ValueOf(data)
	if !isSequence(v.Kind()) {
		return nil, &ShapeError{Reason: "unknown data format", Type: v.Type().String()}
	}

	rows := v.Len()
	if rows == 0 {
		return nil, &ShapeError{Reason: "0-dimensional data", Type: v.Type().String()}
	}

	first := elem(v.Index(0))
	if !first.IsValid() || !isSequence(first.Kind()) {
		// scalar rows
		return []int{rows}, nil
	}

	cols := first.Len()
	for i := 1; i < rows; i++ {
		row := elem(v.Index(i))
		if !row.IsValid() || !isSequence(row.Kind()) {
			return nil, &ShapeError{
				Reason: fmt.Sprintf("row %d is not a sequence", i),
				Type:   v.Type().String(),
			}
		}
		if row.Len() != cols {
			return nil, &ShapeError{
				Reason: fmt.Sprintf("row %d has %d columns, expected %d", i, row.Len(), cols),
				Type:   v.Type().String(),
			}
		}
	}

	return []int{rows, cols}, nil
}

// Rows returns the leading dimension of data
func Rows(data any) (int, error) {
	dims, err := Of(data)
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

// Match validates inputs and outputs and returns their shared row count
func Match(inputs, outputs any) (int, error) {
	in, err := Rows(inputs)
	if err != nil {
		return 0, err
	}
	out, err := Rows(outputs)
	if err != nil {
		return 0, err
	}
	if in != out {
		return 0, &MismatchError{Inputs: in, Outputs: out}
	}
	return in, nil
}

func isSequence(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array
}

// elem unwraps interfaces so []any rows are inspected by their dynamic type
func elem(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
