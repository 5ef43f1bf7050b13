package vmap

import (
	"github.com/pkg/errors"

	"github.com/born-ml/vmap/internal/tensor"
)

// IndexSelectBatchRule batches index_select by rewriting it as a gather: the
// 1-D per-example index is reshaped to sit on the target axis and broadcast
// across every other axis of self, so a single gather picks the selected
// rows for all examples at once.
func IndexSelectBatchRule(self Operand, dim int, index Operand) (*tensor.RawTensor, BatchDim, error) {
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
		return nil, BatchDim{}, errors.Wrap(err, "index_select")
	}

	if index_.Rank() < self_.Rank() {
		// Reshape the index to [B, 1, ..., le, ..., 1] with le on the target
		// axis, then broadcast it across the remaining axes of self.
		le := index_.Shape()[1]
		viewShape := make(tensor.Shape, self_.Rank())
		for i := range viewShape {
			viewShape[i] = 1
		}
		viewShape[0] = batchSize
		viewShape[physicalDim] = le

		index_, err = tensor.Reshape(index_, viewShape)
		if err != nil {
			return nil, BatchDim{}, errors.Wrap(err, "vmap: index_select")
		}

		expandShape := self_.Shape().Clone()
		expandShape[physicalDim] = le
		index_, err = tensor.Expand(index_, expandShape)
		if err != nil {
			return nil, BatchDim{}, errors.Wrap(err, "vmap: index_select")
		}
	}

	result, err := tensor.Gather(self_, physicalDim, index_)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: index_select")
	}
	// The result has same rank as self.
	if selfLogicalRank == 0 {
		result = squeeze(result, -1)
	}
	return result, NewBatchDim(0), nil
}

// IndexCopyBatchRule batches index_copy by flattening the batch axis into
// the target axis: each example's indices are offset by its batch position
// times the per-example axis length, so one index_copy over the merged axis
// writes every example's rows. Logical scalars take a degenerate path where
// self is viewed as [1, batchSize] and the offsets are the batch positions
// themselves.
func IndexCopyBatchRule(self Operand, dim int, index, source Operand) (*tensor.RawTensor, BatchDim, error) {
	selfLogicalRank := LogicalRank(self.Tensor, self.BatchDim)
	sourceLogicalRank := LogicalRank(source.Tensor, source.BatchDim)
	batchSize := BatchSize(self, index, source)

	self_ := MoveBatchDimToFront(self.Tensor, self.BatchDim)
	index_ := MoveBatchDimToFront(index.Tensor, index.BatchDim)
	source_ := MoveBatchDimToFront(source.Tensor, source.BatchDim)

	self_ = EnsureHasBatchDim(self_, self.BatchDim.Present(), batchSize)
	index_ = EnsureHasBatchDim(index_, index.BatchDim.Present(), batchSize)
	source_ = EnsureHasBatchDim(source_, source.BatchDim.Present(), batchSize)

	if selfLogicalRank != 0 && sourceLogicalRank != 0 {
		logicalDim, err := PhysicalDim(selfLogicalRank, false, dim)
		if err != nil {
			return nil, BatchDim{}, errors.Wrap(err, "index_copy")
		}
		physicalDim := logicalDim + 1

		batchedIndex, err := offsetIndexByBatch(index_, batchSize, self_.Shape()[physicalDim])
		if err != nil {
			return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
		}

		selfShape := self_.Shape()
		newSelfShape := selfShape[1:].Clone()
		newSelfShape[logicalDim] *= batchSize
		newSourceShape := source_.Shape()[1:].Clone()
		newSourceShape[logicalDim] *= batchSize

		selfFlat, err := tensor.Reshape(self_, newSelfShape)
		if err != nil {
			return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
		}
		sourceFlat, err := tensor.Reshape(source_, newSourceShape)
		if err != nil {
			return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
		}

		result, err := tensor.IndexCopy(selfFlat, logicalDim, batchedIndex, sourceFlat)
		if err != nil {
			return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
		}
		result, err = tensor.Reshape(result, selfShape)
		if err != nil {
			return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
		}
		return result, NewBatchDim(0), nil
	}

	// Scalar path: each example owns exactly one slot, so the batch
	// positions are the indices.
	indexFlat, err := tensor.Reshape(index_, tensor.Shape{-1})
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
	}
	arange, err := tensor.Arange(0, batchSize, indexFlat.DType(), self_.Device())
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
	}
	batchedIndex, err := tensor.Add(indexFlat, arange)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
	}

	selfView, err := tensor.Reshape(self_, tensor.Shape{1, batchSize})
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
	}
	sourceView, err := tensor.Reshape(source_, tensor.Shape{1, batchSize})
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
	}
	result, err := tensor.IndexCopy(selfView, 1, batchedIndex, sourceView)
	if err != nil {
		return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
	}
	if selfLogicalRank == 0 {
		result = squeeze(result, 0)
	} else {
		result, err = tensor.Reshape(result, self_.Shape())
		if err != nil {
			return nil, BatchDim{}, errors.Wrap(err, "vmap: index_copy")
		}
	}
	return result, NewBatchDim(0), nil
}

// offsetIndexByBatch shifts each example's indices by batchPos*axisLen and
// flattens the result to 1-D, addressing the merged batch-by-target axis.
func offsetIndexByBatch(index *tensor.RawTensor, batchSize, axisLen int) (*tensor.RawTensor, error) {
	arange, err := tensor.Arange(0, batchSize, index.DType(), index.Device())
	if err != nil {
		return nil, err
	}
	arangeShape := make(tensor.Shape, index.Rank())
	for i := range arangeShape {
		arangeShape[i] = 1
	}
	arangeShape[0] = batchSize
	arange, err = tensor.Reshape(arange, arangeShape)
	if err != nil {
		return nil, err
	}
	offsets, err := tensor.MulScalar(arange, float64(axisLen))
	if err != nil {
		return nil, err
	}
	shifted, err := tensor.Add(index, offsets)
	if err != nil {
		return nil, err
	}
	return tensor.Reshape(shifted, tensor.Shape{-1})
}
