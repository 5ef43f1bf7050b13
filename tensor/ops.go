// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/vmap/internal/tensor"
)

// Gather selects elements of x along dim using an index tensor of the same
// rank; the result has the shape of index.
func Gather(x *RawTensor, dim int, index *RawTensor) (*RawTensor, error) {
	return tensor.Gather(x, dim, index)
}

// GatherBackward scatter-adds grad back to the positions Gather read from.
func GatherBackward(grad, x *RawTensor, dim int, index *RawTensor) (*RawTensor, error) {
	return tensor.GatherBackward(grad, x, dim, index)
}

// Scatter writes elements of src into a copy of x along dim.
func Scatter(x *RawTensor, dim int, index, src *RawTensor) (*RawTensor, error) {
	return tensor.Scatter(x, dim, index, src)
}

// ScatterValue writes a scalar into a copy of x at every indexed position.
func ScatterValue(x *RawTensor, dim int, index *RawTensor, value float64) (*RawTensor, error) {
	return tensor.ScatterValue(x, dim, index, value)
}

// ScatterAdd accumulates elements of src into a copy of x along dim.
func ScatterAdd(x *RawTensor, dim int, index, src *RawTensor) (*RawTensor, error) {
	return tensor.ScatterAdd(x, dim, index, src)
}

// ScatterReduce combines elements of src into a copy of x along dim using
// ReduceAdd or ReduceMultiply.
func ScatterReduce(x *RawTensor, dim int, index, src *RawTensor, reduce string) (*RawTensor, error) {
	return tensor.ScatterReduce(x, dim, index, src, reduce)
}

// ScatterValueReduce combines a scalar into a copy of x at every indexed
// position using ReduceAdd or ReduceMultiply.
func ScatterValueReduce(x *RawTensor, dim int, index *RawTensor, value float64, reduce string) (*RawTensor, error) {
	return tensor.ScatterValueReduce(x, dim, index, value, reduce)
}

// IndexSelect selects slices of x along dim using a 1-D integer index.
func IndexSelect(x *RawTensor, dim int, index *RawTensor) (*RawTensor, error) {
	return tensor.IndexSelect(x, dim, index)
}

// IndexCopy copies slices of source into a copy of x along dim.
func IndexCopy(x *RawTensor, dim int, index, source *RawTensor) (*RawTensor, error) {
	return tensor.IndexCopy(x, dim, index, source)
}

// Index performs NumPy-style advanced indexing; nil entries select whole
// axes, boolean masks select by predicate, integer indices broadcast.
func Index(x *RawTensor, indices []*RawTensor) (*RawTensor, error) {
	return tensor.Index(x, indices)
}

// IndexPut writes values into x at the positions an equivalent Index call
// would read. When accumulate is set, values are added instead of assigned.
func IndexPut(x *RawTensor, indices []*RawTensor, values *RawTensor, accumulate bool) error {
	return tensor.IndexPut(x, indices, values, accumulate)
}
