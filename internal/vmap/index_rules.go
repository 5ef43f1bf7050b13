package vmap

import (
	"github.com/pkg/errors"

	"github.com/born-ml/vmap/internal/tensor"
)

// batchIndices rewrites an optional index list so that one unbatched
// advanced-indexing call reproduces per-example semantics.
//
// Three main cases:
//
//  1. self is batched, no index is batched: prepend a nil entry so the
//     existing indices apply independently inside each batch slice.
//  2. self is not batched, some index is batched: leave the list alone;
//     the batched index broadcasts against the unbatched self.
//  3. some index is batched and self (or, on the write path, values) is
//     batched: prepend an arange over the batch axis, padded with trailing
//     singleton dims so it broadcasts with the other indices. Each example
//     then addresses only its own batch slice.
//
// A batched boolean mask is unrepresentable: each example could select a
// different number of elements, so the rewrite is rejected.
func batchIndices(
	indices []*tensor.RawTensor,
	indicesBdims []BatchDim,
	batchSize int,
	selfBdim BatchDim,
	valuesBdim BatchDim,
	device tensor.Device,
) ([]*tensor.RawTensor, error) {
	if len(indices) != len(indicesBdims) {
		panic("vmap: indices and batch dims length mismatch")
	}

	out := make([]*tensor.RawTensor, 0, len(indices)+1)
	minIndexDim := 0
	for i, ind := range indices {
		if ind == nil {
			out = append(out, nil)
			continue
		}
		if ind.DType() == tensor.Bool && indicesBdims[i].Present() {
			return nil, errors.Wrapf(ErrBatchedBoolMask, "index %d", i)
		}
		out = append(out, MoveBatchDimToFront(ind, indicesBdims[i]))
		if r := ind.Rank(); r > minIndexDim {
			minIndexDim = r
		}
	}

	indicesBatched := false
	for _, bd := range indicesBdims {
		indicesBatched = indicesBatched || bd.Present()
	}
	if !indicesBatched && valuesBdim.Present() {
		minIndexDim++
	}

	switch {
	case !indicesBatched && selfBdim.Present():
		out = append([]*tensor.RawTensor{nil}, out...)
	case indicesBatched && !selfBdim.Present():
		// The batched index broadcasts against the unbatched self as is.
	case indicesBatched && (selfBdim.Present() || valuesBdim.Present()):
		arange, err := tensor.Arange(0, batchSize, tensor.Int64, device)
		if err != nil {
			return nil, errors.Wrap(err, "vmap: batch index")
		}
		for arange.Rank() < minIndexDim {
			arange = unsqueeze(arange, -1)
		}
		out = append([]*tensor.RawTensor{arange}, out...)
	}

	return out, nil
}

// IndexBatchRule batches advanced-index reads. The result always carries its
// batch dimension at axis 0.
func IndexBatchRule(
	self *tensor.RawTensor, selfBdim BatchDim,
	indices []*tensor.RawTensor, indicesBdims []BatchDim,
) (*tensor.RawTensor, BatchDim, error) {
	if len(indices) != len(indicesBdims) {
		panic("vmap: indices and batch dims length mismatch")
	}

	operands := make([]Operand, 0, len(indices)+1)
	operands = append(operands, Operand{self, selfBdim})
	for i := range indices {
		operands = append(operands, Operand{indices[i], indicesBdims[i]})
	}
	batchSize := BatchSize(operands...)

	self_ := MoveBatchDimToFront(self, selfBdim)
	indices_, err := batchIndices(indices, indicesBdims, batchSize, selfBdim, BatchDim{}, self.Device())
	if err != nil {
		return nil, BatchDim{}, err
	}

	result, err := tensor.Index(self_, indices_)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: index")
	}
	return result, NewBatchDim(0), nil
}

// IndexPutBatchRule batches advanced-index writes. The receiver is mutated
// in place and must itself be batched: an unbatched receiver is shared
// across all examples and cannot safely hold per-example writes.
func IndexPutBatchRule(
	self *tensor.RawTensor, selfBdim BatchDim,
	indices []*tensor.RawTensor, indicesBdims []BatchDim,
	values *tensor.RawTensor, valuesBdim BatchDim,
	accumulate bool,
) error {
	if len(indices) != len(indicesBdims) {
		panic("vmap: indices and batch dims length mismatch")
	}
	if !selfBdim.Present() {
		return errors.Wrap(ErrInplaceOnUnbatched, "index_put_")
	}

	batchSize := self.Shape()[selfBdim.Dim()]

	self_ := MoveBatchDimToFront(self, selfBdim)
	values_ := MoveBatchDimToFront(values, valuesBdim)
	indices_, err := batchIndices(indices, indicesBdims, batchSize, selfBdim, valuesBdim, self.Device())
	if err != nil {
		return err
	}

	if err := tensor.IndexPut(self_, indices_, values_, accumulate); err != nil {
		return errors.Wrap(err, "vmap: index_put_")
	}

	// Normalizing a non-leading batch dim materializes a copy; fold the
	// writes back into the caller's receiver.
	if selfBdim.Dim() != 0 {
		restored, err := tensor.MoveDim(self_, 0, selfBdim.Dim())
		if err != nil {
			return errors.Wrap(err, "vmap: index_put_")
		}
		copy(self.Data(), restored.Data())
	}
	return nil
}
