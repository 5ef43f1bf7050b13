package tensor

import "fmt"

// Reduction modes accepted by ScatterReduce and ScatterValueReduce.
const (
	ReduceAdd      = "add"
	ReduceMultiply = "multiply"
)

// Gather selects elements of x along dim using an index tensor of the same
// rank: out has the shape of index and
//
//	out[i][j][k] = x[index[i][j][k]][j][k]  // dim == 0
//	out[i][j][k] = x[i][index[i][j][k]][k]  // dim == 1
//
// index.Shape()[d] must not exceed x.Shape()[d] for every d != dim.
// Negative index values wrap around x.Shape()[dim].
func Gather(x *RawTensor, dim int, index *RawTensor) (*RawTensor, error) {
	if x == nil || index == nil {
		return nil, fmt.Errorf("Gather: input tensors cannot be nil")
	}
	d, err := wrapDim(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("Gather: %w", err)
	}
	if x.Rank() == 0 {
		return nil, fmt.Errorf("Gather: input must have rank >= 1")
	}
	if index.Rank() != x.Rank() {
		return nil, fmt.Errorf("Gather: index rank %d != input rank %d", index.Rank(), x.Rank())
	}
	for i, s := range index.shape {
		if i != d && s > x.shape[i] {
			return nil, fmt.Errorf("Gather: index size %d exceeds input size %d at dim %d", s, x.shape[i], i)
		}
	}
	idx, err := index.intSlice()
	if err != nil {
		return nil, fmt.Errorf("Gather: %w", err)
	}

	out, err := NewRaw(index.shape, x.dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("Gather: %w", err)
	}

	idxStrides := index.shape.ComputeStrides()
	xStrides := x.shape.ComputeStrides()
	coords := make([]int, index.Rank())
	for i := range idx {
		offsetToCoords(i, idxStrides, coords)
		v := idx[i]
		if v < 0 {
			v += x.shape[d]
		}
		if v < 0 || v >= x.shape[d] {
			return nil, fmt.Errorf("Gather: index %d out of range for dim %d (size %d)", idx[i], d, x.shape[d])
		}
		save := coords[d]
		coords[d] = v
		copyElem(out, x, i, coordsToOffset(coords, xStrides))
		coords[d] = save
	}

	return out, nil
}

// GatherBackward computes the gradient of Gather with respect to x:
// gradients are scatter-added back to the positions they were gathered from.
// grad must have the shape of index.
func GatherBackward(grad, x *RawTensor, dim int, index *RawTensor) (*RawTensor, error) {
	if grad == nil || x == nil || index == nil {
		return nil, fmt.Errorf("GatherBackward: input tensors cannot be nil")
	}
	if !grad.shape.Equal(index.shape) {
		return nil, fmt.Errorf("GatherBackward: grad shape %v != index shape %v", grad.shape, index.shape)
	}
	zeros, err := ZerosLike(x)
	if err != nil {
		return nil, fmt.Errorf("GatherBackward: %w", err)
	}
	out, err := scatterImpl(zeros, dim, index, grad, 0, false, ReduceAdd)
	if err != nil {
		return nil, fmt.Errorf("GatherBackward: %w", err)
	}
	return out, nil
}

// Scatter writes elements of src into a copy of x along dim:
//
//	out[index[i][j][k]][j][k] = src[i][j][k]  // dim == 0
//
// The write order for duplicate indices is unspecified.
func Scatter(x *RawTensor, dim int, index, src *RawTensor) (*RawTensor, error) {
	return scatterImpl(x, dim, index, src, 0, false, "")
}

// ScatterValue writes a scalar into a copy of x at every indexed position.
func ScatterValue(x *RawTensor, dim int, index *RawTensor, value float64) (*RawTensor, error) {
	return scatterImpl(x, dim, index, nil, value, true, "")
}

// ScatterAdd accumulates elements of src into a copy of x along dim.
// Duplicate indices accumulate.
func ScatterAdd(x *RawTensor, dim int, index, src *RawTensor) (*RawTensor, error) {
	return scatterImpl(x, dim, index, src, 0, false, ReduceAdd)
}

// ScatterReduce combines elements of src into a copy of x along dim using
// the given reduction mode (ReduceAdd or ReduceMultiply).
func ScatterReduce(x *RawTensor, dim int, index, src *RawTensor, reduce string) (*RawTensor, error) {
	if reduce != ReduceAdd && reduce != ReduceMultiply {
		return nil, fmt.Errorf("ScatterReduce: unsupported reduction %q", reduce)
	}
	return scatterImpl(x, dim, index, src, 0, false, reduce)
}

// ScatterValueReduce combines a scalar into a copy of x at every indexed
// position using the given reduction mode.
func ScatterValueReduce(x *RawTensor, dim int, index *RawTensor, value float64, reduce string) (*RawTensor, error) {
	if reduce != ReduceAdd && reduce != ReduceMultiply {
		return nil, fmt.Errorf("ScatterValueReduce: unsupported reduction %q", reduce)
	}
	return scatterImpl(x, dim, index, nil, value, true, reduce)
}

// scatterImpl is the shared kernel behind the scatter family. When useValue
// is set, src is ignored and the scalar value is written instead.
func scatterImpl(x *RawTensor, dim int, index, src *RawTensor, value float64, useValue bool, reduce string) (*RawTensor, error) {
	if x == nil || index == nil {
		return nil, fmt.Errorf("Scatter: input tensors cannot be nil")
	}
	d, err := wrapDim(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("Scatter: %w", err)
	}
	if x.Rank() == 0 {
		return nil, fmt.Errorf("Scatter: input must have rank >= 1")
	}
	if index.Rank() != x.Rank() {
		return nil, fmt.Errorf("Scatter: index rank %d != input rank %d", index.Rank(), x.Rank())
	}
	for i, s := range index.shape {
		if i != d && s > x.shape[i] {
			return nil, fmt.Errorf("Scatter: index size %d exceeds input size %d at dim %d", s, x.shape[i], i)
		}
	}

	if useValue {
		src, err = Full(Shape{1}, value, x.dtype, x.device)
		if err != nil {
			return nil, fmt.Errorf("Scatter: %w", err)
		}
	} else {
		if src == nil {
			return nil, fmt.Errorf("Scatter: source tensor cannot be nil")
		}
		if src.dtype != x.dtype {
			return nil, fmt.Errorf("Scatter: source dtype %s != input dtype %s", src.dtype, x.dtype)
		}
		if src.Rank() != x.Rank() {
			return nil, fmt.Errorf("Scatter: source rank %d != input rank %d", src.Rank(), x.Rank())
		}
		for i, s := range index.shape {
			if s > src.shape[i] {
				return nil, fmt.Errorf("Scatter: index size %d exceeds source size %d at dim %d", s, src.shape[i], i)
			}
		}
	}

	idx, err := index.intSlice()
	if err != nil {
		return nil, fmt.Errorf("Scatter: %w", err)
	}

	out := x.Copy()
	apply, err := combiner(out, src, reduce)
	if err != nil {
		return nil, fmt.Errorf("Scatter: %w", err)
	}

	idxStrides := index.shape.ComputeStrides()
	outStrides := out.shape.ComputeStrides()
	var srcStrides []int
	if !useValue {
		srcStrides = src.shape.ComputeStrides()
	}
	coords := make([]int, index.Rank())
	for i := range idx {
		offsetToCoords(i, idxStrides, coords)
		v := idx[i]
		if v < 0 {
			v += out.shape[d]
		}
		if v < 0 || v >= out.shape[d] {
			return nil, fmt.Errorf("Scatter: index %d out of range for dim %d (size %d)", idx[i], d, out.shape[d])
		}
		srcOff := 0
		if !useValue {
			srcOff = coordsToOffset(coords, srcStrides)
		}
		save := coords[d]
		coords[d] = v
		apply(coordsToOffset(coords, outStrides), srcOff)
		coords[d] = save
	}

	return out, nil
}

// combiner returns a function applying element srcOff of src into element
// dstOff of dst under the given reduction; "" means plain assignment.
func combiner(dst, src *RawTensor, reduce string) (func(dstOff, srcOff int), error) {
	if reduce == "" {
		return func(dstOff, srcOff int) { copyElem(dst, src, dstOff, srcOff) }, nil
	}

	switch dst.dtype {
	case Float32:
		dd, sd := dst.AsFloat32(), src.AsFloat32()
		if reduce == ReduceAdd {
			return func(d, s int) { dd[d] += sd[s] }, nil
		}
		return func(d, s int) { dd[d] *= sd[s] }, nil
	case Float64:
		dd, sd := dst.AsFloat64(), src.AsFloat64()
		if reduce == ReduceAdd {
			return func(d, s int) { dd[d] += sd[s] }, nil
		}
		return func(d, s int) { dd[d] *= sd[s] }, nil
	case Int32:
		dd, sd := dst.AsInt32(), src.AsInt32()
		if reduce == ReduceAdd {
			return func(d, s int) { dd[d] += sd[s] }, nil
		}
		return func(d, s int) { dd[d] *= sd[s] }, nil
	case Int64:
		dd, sd := dst.AsInt64(), src.AsInt64()
		if reduce == ReduceAdd {
			return func(d, s int) { dd[d] += sd[s] }, nil
		}
		return func(d, s int) { dd[d] *= sd[s] }, nil
	default:
		return nil, fmt.Errorf("unsupported dtype %s for reduction %q", dst.dtype, reduce)
	}
}

// IndexSelect selects slices of x along dim using a 1-D integer index:
// out.Shape()[dim] == index length, other dims unchanged.
func IndexSelect(x *RawTensor, dim int, index *RawTensor) (*RawTensor, error) {
	if x == nil || index == nil {
		return nil, fmt.Errorf("IndexSelect: input tensors cannot be nil")
	}
	d, err := wrapDim(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("IndexSelect: %w", err)
	}
	if x.Rank() == 0 {
		return nil, fmt.Errorf("IndexSelect: input must have rank >= 1")
	}
	if index.Rank() != 1 {
		return nil, fmt.Errorf("IndexSelect: index must be 1-D, got rank %d", index.Rank())
	}
	idx, err := index.intSlice()
	if err != nil {
		return nil, fmt.Errorf("IndexSelect: %w", err)
	}

	newShape := x.shape.Clone()
	newShape[d] = len(idx)
	out, err := NewRaw(newShape, x.dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("IndexSelect: %w", err)
	}

	outStrides := newShape.ComputeStrides()
	xStrides := x.shape.ComputeStrides()
	coords := make([]int, x.Rank())
	for i := 0; i < out.NumElements(); i++ {
		offsetToCoords(i, outStrides, coords)
		v := idx[coords[d]]
		if v < 0 {
			v += x.shape[d]
		}
		if v < 0 || v >= x.shape[d] {
			return nil, fmt.Errorf("IndexSelect: index %d out of range for dim %d (size %d)", idx[coords[d]], d, x.shape[d])
		}
		save := coords[d]
		coords[d] = v
		copyElem(out, x, i, coordsToOffset(coords, xStrides))
		coords[d] = save
	}

	return out, nil
}

// IndexCopy copies slices of source into a copy of x along dim: slice i of
// source replaces slice index[i] of x. index must be 1-D with length equal
// to source.Shape()[dim]; source must match x on every other dim.
func IndexCopy(x *RawTensor, dim int, index, source *RawTensor) (*RawTensor, error) {
	if x == nil || index == nil || source == nil {
		return nil, fmt.Errorf("IndexCopy: input tensors cannot be nil")
	}
	d, err := wrapDim(dim, x.Rank())
	if err != nil {
		return nil, fmt.Errorf("IndexCopy: %w", err)
	}
	if x.Rank() == 0 {
		return nil, fmt.Errorf("IndexCopy: input must have rank >= 1")
	}
	if index.Rank() != 1 {
		return nil, fmt.Errorf("IndexCopy: index must be 1-D, got rank %d", index.Rank())
	}
	if source.dtype != x.dtype {
		return nil, fmt.Errorf("IndexCopy: source dtype %s != input dtype %s", source.dtype, x.dtype)
	}
	if source.Rank() != x.Rank() {
		return nil, fmt.Errorf("IndexCopy: source rank %d != input rank %d", source.Rank(), x.Rank())
	}
	idx, err := index.intSlice()
	if err != nil {
		return nil, fmt.Errorf("IndexCopy: %w", err)
	}
	if source.shape[d] != len(idx) {
		return nil, fmt.Errorf("IndexCopy: source size %d at dim %d != index length %d", source.shape[d], d, len(idx))
	}
	for i, s := range source.shape {
		if i != d && s != x.shape[i] {
			return nil, fmt.Errorf("IndexCopy: source size %d != input size %d at dim %d", s, x.shape[i], i)
		}
	}

	out := x.Copy()
	srcStrides := source.shape.ComputeStrides()
	outStrides := out.shape.ComputeStrides()
	coords := make([]int, source.Rank())
	for i := 0; i < source.NumElements(); i++ {
		offsetToCoords(i, srcStrides, coords)
		v := idx[coords[d]]
		if v < 0 {
			v += out.shape[d]
		}
		if v < 0 || v >= out.shape[d] {
			return nil, fmt.Errorf("IndexCopy: index %d out of range for dim %d (size %d)", idx[coords[d]], d, out.shape[d])
		}
		save := coords[d]
		coords[d] = v
		copyElem(out, source, coordsToOffset(coords, outStrides), i)
		coords[d] = save
	}

	return out, nil
}
