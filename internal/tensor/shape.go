package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
// An empty Shape is a scalar (rank 0, one element).
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions >= 0).
// Rank-0 shapes are valid scalars; zero-sized dimensions are allowed for
// empty selections (e.g. a boolean mask with no set elements).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Shapes are compared element-wise from right to left; dimensions are
// compatible if they are equal or one of them is 1; missing dimensions are
// treated as 1.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5)
//	(5)    + (3, 5) → (3, 5)
//	(3, 4) + (3, 5) → error
func BroadcastShapes(a, b Shape) (Shape, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)

	for i := 0; i < maxLen; i++ {
		aDim, bDim := 1, 1
		if idx := len(a) - 1 - i; idx >= 0 {
			aDim = a[idx]
		}
		if idx := len(b) - 1 - i; idx >= 0 {
			bDim = b[idx]
		}

		switch {
		case aDim == bDim || bDim == 1:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
		default:
			return nil, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, nil
}

// BroadcastAll folds BroadcastShapes over a list of shapes.
func BroadcastAll(shapes ...Shape) (Shape, error) {
	result := Shape{}
	for _, s := range shapes {
		var err error
		result, err = BroadcastShapes(result, s)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// wrapDim normalizes a possibly-negative dimension against the given rank.
// Rank-0 tensors accept dims -1 and 0, matching the usual scalar convention.
func wrapDim(dim, rank int) (int, error) {
	effective := rank
	if effective == 0 {
		effective = 1
	}
	wrapped := dim
	if wrapped < 0 {
		wrapped += effective
	}
	if wrapped < 0 || wrapped >= effective {
		return 0, fmt.Errorf("dimension %d out of range for rank %d", dim, rank)
	}
	return wrapped, nil
}

// offsetToCoords decomposes a flat row-major offset into per-dimension
// coordinates, writing into coords (which must have len(shape) entries).
func offsetToCoords(offset int, strides []int, coords []int) {
	for i, stride := range strides {
		coords[i] = offset / stride
		offset %= stride
	}
}

// coordsToOffset composes per-dimension coordinates into a flat offset.
func coordsToOffset(coords, strides []int) int {
	offset := 0
	for i, c := range coords {
		offset += c * strides[i]
	}
	return offset
}
