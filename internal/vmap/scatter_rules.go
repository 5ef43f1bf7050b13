package vmap

import (
	"github.com/pkg/errors"

	"github.com/born-ml/vmap/internal/tensor"
)

// scatterOp applies an unbatched scatter-family primitive to the normalized
// operands. src is nil for the scalar-value variants, whose value travels in
// the closure.
type scatterOp func(self *tensor.RawTensor, dim int, index, src *tensor.RawTensor) (*tensor.RawTensor, error)

// scatterBatchRule is the shared shape plumbing for the scatter family:
// normalize every operand to a leading batch axis, lift logical scalars to
// rank 1, shift the target dimension past the batch axis, and delegate to
// the unbatched op. The result has the shape of the normalized self and
// carries its batch dim at axis 0.
func scatterBatchRule(op scatterOp, self Operand, dim int, index Operand, src *Operand) (*tensor.RawTensor, BatchDim, error) {
	selfLogicalRank := LogicalRank(self.Tensor, self.BatchDim)
	indexLogicalRank := LogicalRank(index.Tensor, index.BatchDim)

	operands := []Operand{self, index}
	if src != nil {
		operands = append(operands, *src)
	}
	batchSize := BatchSize(operands...)

	self_ := MoveBatchDimToFront(self.Tensor, self.BatchDim)
	index_ := MoveBatchDimToFront(index.Tensor, index.BatchDim)
	if selfLogicalRank == 0 {
		self_ = unsqueeze(self_, -1)
	}
	if indexLogicalRank == 0 {
		index_ = unsqueeze(index_, -1)
	}
	self_ = EnsureHasBatchDim(self_, self.BatchDim.Present(), batchSize)
	index_ = EnsureHasBatchDim(index_, index.BatchDim.Present(), batchSize)

	var src_ *tensor.RawTensor
	if src != nil {
		src_ = MoveBatchDimToFront(src.Tensor, src.BatchDim)
		if LogicalRank(src.Tensor, src.BatchDim) == 0 {
			src_ = unsqueeze(src_, -1)
		}
		src_ = EnsureHasBatchDim(src_, src.BatchDim.Present(), batchSize)
	}

	physicalDim, err := PhysicalDim(self_.Rank()-1, true, dim)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "scatter")
	}

	result, err := op(self_, physicalDim, index_, src_)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: scatter")
	}
	// The result has the shape of self.
	if selfLogicalRank == 0 {
		result = squeeze(result, -1)
	}
	return result, NewBatchDim(0), nil
}

// ScatterValueBatchRule batches scatter with a scalar fill value.
func ScatterValueBatchRule(self Operand, dim int, index Operand, value float64) (*tensor.RawTensor, BatchDim, error) {
	return scatterBatchRule(func(s *tensor.RawTensor, d int, i, _ *tensor.RawTensor) (*tensor.RawTensor, error) {
		return tensor.ScatterValue(s, d, i, value)
	}, self, dim, index, nil)
}

// ScatterSrcBatchRule batches scatter with a source tensor.
func ScatterSrcBatchRule(self Operand, dim int, index, src Operand) (*tensor.RawTensor, BatchDim, error) {
	return scatterBatchRule(func(s *tensor.RawTensor, d int, i, sr *tensor.RawTensor) (*tensor.RawTensor, error) {
		return tensor.Scatter(s, d, i, sr)
	}, self, dim, index, &src)
}

// ScatterAddBatchRule batches scatter-add.
func ScatterAddBatchRule(self Operand, dim int, index, src Operand) (*tensor.RawTensor, BatchDim, error) {
	return scatterBatchRule(func(s *tensor.RawTensor, d int, i, sr *tensor.RawTensor) (*tensor.RawTensor, error) {
		return tensor.ScatterAdd(s, d, i, sr)
	}, self, dim, index, &src)
}

// ScatterReduceBatchRule batches scatter with a named reduction over a
// source tensor.
func ScatterReduceBatchRule(self Operand, dim int, index, src Operand, reduce string) (*tensor.RawTensor, BatchDim, error) {
	return scatterBatchRule(func(s *tensor.RawTensor, d int, i, sr *tensor.RawTensor) (*tensor.RawTensor, error) {
		return tensor.ScatterReduce(s, d, i, sr, reduce)
	}, self, dim, index, &src)
}

// ScatterValueReduceBatchRule batches scatter with a named reduction over a
// scalar fill value.
func ScatterValueReduceBatchRule(self Operand, dim int, index Operand, value float64, reduce string) (*tensor.RawTensor, BatchDim, error) {
	return scatterBatchRule(func(s *tensor.RawTensor, d int, i, _ *tensor.RawTensor) (*tensor.RawTensor, error) {
		return tensor.ScatterValueReduce(s, d, i, value, reduce)
	}, self, dim, index, nil)
}

// GatherBatchRule batches gather. The sparseGrad flag is carried through for
// signature parity with the unbatched op; the dense kernel ignores it.
func GatherBatchRule(self Operand, dim int, index Operand, sparseGrad bool) (*tensor.RawTensor, BatchDim, error) {
	_ = sparseGrad

	selfLogicalRank := LogicalRank(self.Tensor, self.BatchDim)
	indexLogicalRank := LogicalRank(index.Tensor, index.BatchDim)
	batchSize := BatchSize(self, index)

	self_ := MoveBatchDimToFront(self.Tensor, self.BatchDim)
	index_ := MoveBatchDimToFront(index.Tensor, index.BatchDim)
	if selfLogicalRank == 0 {
		self_ = unsqueeze(self_, -1)
	}
	if indexLogicalRank == 0 {
		index_ = unsqueeze(index_, -1)
	}
	self_ = EnsureHasBatchDim(self_, self.BatchDim.Present(), batchSize)
	index_ = EnsureHasBatchDim(index_, index.BatchDim.Present(), batchSize)

	physicalDim, err := PhysicalDim(self_.Rank()-1, true, dim)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "gather")
	}

	result, err := tensor.Gather(self_, physicalDim, index_)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: gather")
	}
	// The result has the shape of index.
	if indexLogicalRank == 0 {
		result = squeeze(result, -1)
	}
	return result, NewBatchDim(0), nil
}

// GatherBackwardBatchRule batches the gradient of gather: grad values are
// scatter-added back to the positions they were gathered from.
func GatherBackwardBatchRule(grad Operand, self Operand, dim int, index Operand, sparseGrad bool) (*tensor.RawTensor, BatchDim, error) {
	_ = sparseGrad

	batchSize := BatchSize(grad, self, index)
	grad_ := MoveBatchDimToFront(grad.Tensor, grad.BatchDim)
	self_ := MoveBatchDimToFront(self.Tensor, self.BatchDim)
	index_ := MoveBatchDimToFront(index.Tensor, index.BatchDim)

	gradLogicalRank := LogicalRank(grad.Tensor, grad.BatchDim)
	selfLogicalRank := LogicalRank(self.Tensor, self.BatchDim)
	indexLogicalRank := LogicalRank(index.Tensor, index.BatchDim)

	if gradLogicalRank == 0 {
		grad_ = unsqueeze(grad_, -1)
	}
	if selfLogicalRank == 0 {
		self_ = unsqueeze(self_, -1)
	}
	if indexLogicalRank == 0 {
		index_ = unsqueeze(index_, -1)
	}
	grad_ = EnsureHasBatchDim(grad_, grad.BatchDim.Present(), batchSize)
	self_ = EnsureHasBatchDim(self_, self.BatchDim.Present(), batchSize)
	index_ = EnsureHasBatchDim(index_, index.BatchDim.Present(), batchSize)

	physicalDim, err := PhysicalDim(self_.Rank()-1, true, dim)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "gather_backward")
	}

	result, err := tensor.GatherBackward(grad_, self_, physicalDim, index_)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: gather_backward")
	}
	// The result has the shape of self.
	if selfLogicalRank == 0 {
		result = squeeze(result, -1)
	}
	return result, NewBatchDim(0), nil
}
