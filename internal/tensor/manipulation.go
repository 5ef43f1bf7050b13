package tensor

import (
	"fmt"

	"github.com/born-ml/vmap/internal/parallel"
)

// Reshape returns a view of x with a new shape. One dimension may be -1 and
// is inferred from the element count. The buffer is shared (zero-copy).
func Reshape(x *RawTensor, newShape Shape) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("Reshape: input tensor is nil")
	}

	totalElements := x.NumElements()
	inferIdx := -1
	product := 1
	for i, dim := range newShape {
		switch {
		case dim == -1:
			if inferIdx >= 0 {
				return nil, fmt.Errorf("Reshape: can only have one -1 dimension")
			}
			inferIdx = i
		case dim <= 0:
			return nil, fmt.Errorf("Reshape: dimensions must be positive, got %d", dim)
		default:
			product *= dim
		}
	}

	actualShape := newShape.Clone()
	if inferIdx >= 0 {
		if product == 0 || totalElements%product != 0 {
			return nil, fmt.Errorf("Reshape: cannot infer dimension for shape %v from %d elements", newShape, totalElements)
		}
		actualShape[inferIdx] = totalElements / product
	}

	if actualShape.NumElements() != totalElements {
		return nil, fmt.Errorf("Reshape: cannot reshape %d elements to shape %v (%d elements)",
			totalElements, actualShape, actualShape.NumElements())
	}

	result := x.Clone()
	result.shape = actualShape
	result.stride = actualShape.ComputeStrides()
	return result, nil
}

// Squeeze removes a size-1 dimension. A rank-0 result is allowed: squeezing
// the only axis of a Shape{1} tensor yields a scalar.
func Squeeze(x *RawTensor, axis int) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("Squeeze: input tensor is nil")
	}
	ax, err := wrapDim(axis, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("Squeeze: %w", err)
	}
	if x.Rank() == 0 {
		return nil, fmt.Errorf("Squeeze: cannot squeeze a scalar")
	}
	if x.shape[ax] != 1 {
		return nil, fmt.Errorf("Squeeze: cannot squeeze axis %d with size %d (must be 1)", ax, x.shape[ax])
	}

	newShape := make(Shape, 0, x.Rank()-1)
	for i, dim := range x.shape {
		if i != ax {
			newShape = append(newShape, dim)
		}
	}

	result := x.Clone()
	result.shape = newShape
	result.stride = newShape.ComputeStrides()
	return result, nil
}

// Unsqueeze inserts a dimension of size 1 at the given axis.
// axis may range over [-(rank+1), rank]; -1 appends a trailing axis.
func Unsqueeze(x *RawTensor, axis int) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("Unsqueeze: input tensor is nil")
	}
	newRank := x.Rank() + 1
	ax := axis
	if ax < 0 {
		ax += newRank
	}
	if ax < 0 || ax >= newRank {
		return nil, fmt.Errorf("Unsqueeze: axis %d out of range [0, %d)", axis, newRank)
	}

	newShape := make(Shape, 0, newRank)
	newShape = append(newShape, x.shape[:ax]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, x.shape[ax:]...)

	result := x.Clone()
	result.shape = newShape
	result.stride = newShape.ComputeStrides()
	return result, nil
}

// Expand broadcasts x to targetShape, materializing the result.
// Dimensions of size 1 (or missing leading dimensions) are replicated.
func Expand(x *RawTensor, targetShape Shape) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("Expand: input tensor is nil")
	}
	if len(targetShape) < x.Rank() {
		return nil, fmt.Errorf("Expand: target shape %v has lower rank than input %v", targetShape, x.shape)
	}

	// Left-pad the source shape with 1s.
	padded := make(Shape, len(targetShape))
	diff := len(targetShape) - x.Rank()
	for i := 0; i < diff; i++ {
		padded[i] = 1
	}
	copy(padded[diff:], x.shape)

	for i := range targetShape {
		if padded[i] != 1 && padded[i] != targetShape[i] {
			return nil, fmt.Errorf("Expand: cannot expand dimension %d from %d to %d", i, padded[i], targetShape[i])
		}
	}

	result, err := NewRaw(targetShape, x.dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("Expand: %w", err)
	}

	srcStrides := padded.ComputeStrides()
	dstStrides := targetShape.ComputeStrides()
	parallel.For(result.NumElements(), func(i int) {
		coords := make([]int, len(targetShape))
		offsetToCoords(i, dstStrides, coords)
		srcOff := 0
		for d, c := range coords {
			if padded[d] != 1 {
				srcOff += c * srcStrides[d]
			}
		}
		copyElem(result, x, i, srcOff)
	}, parallel.DefaultConfig())

	return result, nil
}

// TransposeAxes permutes dimensions according to the given permutation.
// The result is materialized in row-major order.
func TransposeAxes(x *RawTensor, axes ...int) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("TransposeAxes: input tensor is nil")
	}
	if len(axes) != x.Rank() {
		return nil, fmt.Errorf("TransposeAxes: permutation has %d axes, tensor has rank %d", len(axes), x.Rank())
	}

	seen := make([]bool, x.Rank())
	newShape := make(Shape, x.Rank())
	for i, ax := range axes {
		if ax < 0 || ax >= x.Rank() || seen[ax] {
			return nil, fmt.Errorf("TransposeAxes: invalid permutation %v", axes)
		}
		seen[ax] = true
		newShape[i] = x.shape[ax]
	}

	result, err := NewRaw(newShape, x.dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("TransposeAxes: %w", err)
	}

	srcStrides := x.shape.ComputeStrides()
	dstStrides := newShape.ComputeStrides()
	parallel.For(result.NumElements(), func(i int) {
		coords := make([]int, len(newShape))
		offsetToCoords(i, dstStrides, coords)
		srcOff := 0
		for d, c := range coords {
			srcOff += c * srcStrides[axes[d]]
		}
		copyElem(result, x, i, srcOff)
	}, parallel.DefaultConfig())

	return result, nil
}

// MoveDim moves the dimension at position from to position to, shifting the
// dimensions in between.
func MoveDim(x *RawTensor, from, to int) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("MoveDim: input tensor is nil")
	}
	f, err := wrapDim(from, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("MoveDim: %w", err)
	}
	t, err := wrapDim(to, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("MoveDim: %w", err)
	}
	if f == t {
		return x, nil
	}

	perm := make([]int, 0, x.Rank())
	for i := 0; i < x.Rank(); i++ {
		if i != f {
			perm = append(perm, i)
		}
	}
	perm = append(perm[:t], append([]int{f}, perm[t:]...)...)
	return TransposeAxes(x, perm...)
}

// Stack concatenates tensors along a new leading-inserted dimension.
// All inputs must share shape and dtype.
func Stack(tensors []*RawTensor, dim int) (*RawTensor, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("Stack: no tensors provided")
	}
	first := tensors[0]
	for i, t := range tensors[1:] {
		if !t.shape.Equal(first.shape) {
			return nil, fmt.Errorf("Stack: tensor %d has shape %v, want %v", i+1, t.shape, first.shape)
		}
		if t.dtype != first.dtype {
			return nil, fmt.Errorf("Stack: tensor %d has dtype %s, want %s", i+1, t.dtype, first.dtype)
		}
	}

	newRank := first.Rank() + 1
	ax := dim
	if ax < 0 {
		ax += newRank
	}
	if ax < 0 || ax >= newRank {
		return nil, fmt.Errorf("Stack: dim %d out of range [0, %d)", dim, newRank)
	}

	newShape := make(Shape, 0, newRank)
	newShape = append(newShape, first.shape[:ax]...)
	newShape = append(newShape, len(tensors))
	newShape = append(newShape, first.shape[ax:]...)

	result, err := NewRaw(newShape, first.dtype, first.device)
	if err != nil {
		return nil, fmt.Errorf("Stack: %w", err)
	}

	// outer × len(tensors) × inner element blocks.
	inner := 1
	for _, d := range first.shape[ax:] {
		inner *= d
	}
	outer := first.NumElements() / inner
	size := first.elemSize()
	for k, t := range tensors {
		for o := 0; o < outer; o++ {
			dstOff := (o*len(tensors) + k) * inner
			srcOff := o * inner
			copy(result.buffer.data[dstOff*size:(dstOff+inner)*size],
				t.buffer.data[srcOff*size:(srcOff+inner)*size])
		}
	}

	return result, nil
}

// Select returns the slice of x at position i along dim, with dim removed.
func Select(x *RawTensor, dim, i int) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("Select: input tensor is nil")
	}
	d, err := wrapDim(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("Select: %w", err)
	}
	if x.Rank() == 0 {
		return nil, fmt.Errorf("Select: cannot select from a scalar")
	}
	if i < 0 || i >= x.shape[d] {
		return nil, fmt.Errorf("Select: index %d out of range for dim %d (size %d)", i, d, x.shape[d])
	}

	newShape := make(Shape, 0, x.Rank()-1)
	newShape = append(newShape, x.shape[:d]...)
	newShape = append(newShape, x.shape[d+1:]...)

	result, err := NewRaw(newShape, x.dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("Select: %w", err)
	}

	inner := 1
	for _, s := range x.shape[d+1:] {
		inner *= s
	}
	outer := result.NumElements() / inner
	size := x.elemSize()
	for o := 0; o < outer; o++ {
		srcOff := (o*x.shape[d] + i) * inner
		dstOff := o * inner
		copy(result.buffer.data[dstOff*size:(dstOff+inner)*size],
			x.buffer.data[srcOff*size:(srcOff+inner)*size])
	}

	return result, nil
}
