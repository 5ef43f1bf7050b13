package tensor

import "fmt"

// Add performs element-wise addition with NumPy-style broadcasting.
// Both tensors must share a dtype.
func Add(a, b *RawTensor) (*RawTensor, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("Add: input tensors cannot be nil")
	}
	if a.dtype != b.dtype {
		return nil, fmt.Errorf("Add: dtype mismatch: %s vs %s", a.dtype, b.dtype)
	}

	outShape, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, fmt.Errorf("Add: %w", err)
	}

	out, err := NewRaw(outShape, a.dtype, a.device)
	if err != nil {
		return nil, fmt.Errorf("Add: %w", err)
	}

	aOff := broadcastOffsets(a.shape, outShape)
	bOff := broadcastOffsets(b.shape, outShape)

	switch a.dtype {
	case Float32:
		ad, bd, od := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
		for i := range od {
			od[i] = ad[aOff[i]] + bd[bOff[i]]
		}
	case Float64:
		ad, bd, od := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		for i := range od {
			od[i] = ad[aOff[i]] + bd[bOff[i]]
		}
	case Int32:
		ad, bd, od := a.AsInt32(), b.AsInt32(), out.AsInt32()
		for i := range od {
			od[i] = ad[aOff[i]] + bd[bOff[i]]
		}
	case Int64:
		ad, bd, od := a.AsInt64(), b.AsInt64(), out.AsInt64()
		for i := range od {
			od[i] = ad[aOff[i]] + bd[bOff[i]]
		}
	default:
		return nil, fmt.Errorf("Add: unsupported dtype %s", a.dtype)
	}

	return out, nil
}

// MulScalar multiplies every element by a scalar (converted to dtype).
func MulScalar(x *RawTensor, scalar float64) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("MulScalar: input tensor is nil")
	}
	out, err := NewRaw(x.shape, x.dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("MulScalar: %w", err)
	}

	switch x.dtype {
	case Float32:
		in, od := x.AsFloat32(), out.AsFloat32()
		for i := range od {
			od[i] = in[i] * float32(scalar)
		}
	case Float64:
		in, od := x.AsFloat64(), out.AsFloat64()
		for i := range od {
			od[i] = in[i] * scalar
		}
	case Int32:
		in, od := x.AsInt32(), out.AsInt32()
		for i := range od {
			od[i] = in[i] * int32(scalar)
		}
	case Int64:
		in, od := x.AsInt64(), out.AsInt64()
		for i := range od {
			od[i] = in[i] * int64(scalar)
		}
	default:
		return nil, fmt.Errorf("MulScalar: unsupported dtype %s", x.dtype)
	}

	return out, nil
}

// broadcastOffsets precomputes, for every flat offset of outShape, the flat
// offset into a tensor of shape src broadcast against outShape.
func broadcastOffsets(src, outShape Shape) []int {
	padded := make(Shape, len(outShape))
	diff := len(outShape) - len(src)
	for i := 0; i < diff; i++ {
		padded[i] = 1
	}
	copy(padded[diff:], src)

	srcStrides := padded.ComputeStrides()
	outStrides := outShape.ComputeStrides()

	offsets := make([]int, outShape.NumElements())
	coords := make([]int, len(outShape))
	for i := range offsets {
		offsetToCoords(i, outStrides, coords)
		off := 0
		for d, c := range coords {
			if padded[d] != 1 {
				off += c * srcStrides[d]
			}
		}
		offsets[i] = off
	}
	return offsets
}
