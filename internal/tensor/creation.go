package tensor

import "fmt"

// Arange creates a 1-D tensor with values [start, end) in steps of 1.
//
// Example:
//
//	idx, _ := tensor.Arange(0, 4, tensor.Int64, tensor.CPU)  // [0, 1, 2, 3]
func Arange(start, end int, dtype DataType, device Device) (*RawTensor, error) {
	if end < start {
		return nil, fmt.Errorf("Arange: end %d < start %d", end, start)
	}
	n := end - start
	if n == 0 {
		return nil, fmt.Errorf("Arange: empty range [%d, %d)", start, end)
	}

	out, err := NewRaw(Shape{n}, dtype, device)
	if err != nil {
		return nil, fmt.Errorf("Arange: %w", err)
	}

	switch dtype {
	case Float32:
		data := out.AsFloat32()
		for i := range data {
			data[i] = float32(start + i)
		}
	case Float64:
		data := out.AsFloat64()
		for i := range data {
			data[i] = float64(start + i)
		}
	case Int32:
		data := out.AsInt32()
		for i := range data {
			data[i] = int32(start + i)
		}
	case Int64:
		data := out.AsInt64()
		for i := range data {
			data[i] = int64(start + i)
		}
	default:
		return nil, fmt.Errorf("Arange: unsupported dtype %s", dtype)
	}

	return out, nil
}

// Full creates a tensor filled with a scalar value (converted to dtype).
func Full(shape Shape, value float64, dtype DataType, device Device) (*RawTensor, error) {
	out, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, fmt.Errorf("Full: %w", err)
	}
	if err := fillValue(out, value); err != nil {
		return nil, fmt.Errorf("Full: %w", err)
	}
	return out, nil
}

// ZerosLike creates a zero-initialized tensor with the same shape, dtype and
// device as the input.
func ZerosLike(x *RawTensor) (*RawTensor, error) {
	out, err := NewRaw(x.shape, x.dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("ZerosLike: %w", err)
	}
	return out, nil
}

// FromFloat32 creates a Float32 tensor from a Go slice. The data is copied.
func FromFloat32(data []float32, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("FromFloat32: shape %v requires %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	out, err := NewRaw(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	copy(out.AsFloat32(), data)
	return out, nil
}

// FromInt64 creates an Int64 tensor from a Go slice. The data is copied.
func FromInt64(data []int64, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("FromInt64: shape %v requires %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	out, err := NewRaw(shape, Int64, device)
	if err != nil {
		return nil, err
	}
	copy(out.AsInt64(), data)
	return out, nil
}

// FromBool creates a Bool tensor from a Go slice. The data is copied.
func FromBool(data []bool, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("FromBool: shape %v requires %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	out, err := NewRaw(shape, Bool, device)
	if err != nil {
		return nil, err
	}
	copy(out.AsBool(), data)
	return out, nil
}

// fillValue writes a scalar (converted to the tensor's dtype) into every element.
func fillValue(t *RawTensor, value float64) error {
	switch t.dtype {
	case Float32:
		data := t.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case Float64:
		data := t.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Int32:
		data := t.AsInt32()
		for i := range data {
			data[i] = int32(value)
		}
	case Int64:
		data := t.AsInt64()
		for i := range data {
			data[i] = int64(value)
		}
	default:
		return fmt.Errorf("unsupported dtype %s for scalar fill", t.dtype)
	}
	return nil
}
