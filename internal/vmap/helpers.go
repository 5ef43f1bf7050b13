package vmap

import (
	"fmt"

	"github.com/born-ml/vmap/internal/tensor"
)

// LogicalRank returns the rank the tensor would have without its batch
// dimension. Rules reason in logical-rank space when deciding whether an
// operand is a scalar.
func LogicalRank(t *tensor.RawTensor, bdim BatchDim) int {
	rank := t.Rank()
	if bdim.Present() {
		rank--
	}
	return rank
}

// BatchSize returns the size along the first present batch dimension,
// scanning operands in argument order (rules pass self first, then index,
// then source/values).
//
// Panics if no operand is batched, or if two batched operands disagree on
// the size: both indicate a bug in the calling dispatcher, not a user error.
func BatchSize(operands ...Operand) int {
	size := -1
	for _, op := range operands {
		if op.Tensor == nil || !op.BatchDim.Present() {
			continue
		}
		s := op.Tensor.Shape()[op.BatchDim.Dim()]
		if size < 0 {
			size = s
		} else if s != size {
			panic(fmt.Sprintf("vmap: batched operands disagree on batch size: %d vs %d", size, s))
		}
	}
	if size < 0 {
		panic("vmap: batching rule invoked without any batched operand")
	}
	return size
}

// MoveBatchDimToFront normalizes the batch dimension to axis 0. Tensors
// without a batch dimension are returned unchanged (the caller must not
// assume axis 0 is meaningful in that case).
func MoveBatchDimToFront(t *tensor.RawTensor, bdim BatchDim) *tensor.RawTensor {
	if !bdim.Present() || bdim.Dim() == 0 {
		return t
	}
	moved, err := tensor.MoveDim(t, bdim.Dim(), 0)
	if err != nil {
		// The batch dim was recorded by the wrapper and is always in range.
		panic(fmt.Sprintf("vmap: %v", err))
	}
	return moved
}

// EnsureHasBatchDim gives every operand a leading batch axis: batched
// tensors (already normalized to front) pass through; unbatched tensors are
// broadcast to a leading axis of length batchSize, replicating the value
// across the batch.
func EnsureHasBatchDim(t *tensor.RawTensor, hasBatchDim bool, batchSize int) *tensor.RawTensor {
	if hasBatchDim {
		return t
	}
	unsqueezed, err := tensor.Unsqueeze(t, 0)
	if err != nil {
		panic(fmt.Sprintf("vmap: %v", err))
	}
	target := make(tensor.Shape, 0, unsqueezed.Rank())
	target = append(target, batchSize)
	target = append(target, t.Shape()...)
	expanded, err := tensor.Expand(unsqueezed, target)
	if err != nil {
		panic(fmt.Sprintf("vmap: %v", err))
	}
	return expanded
}

// PhysicalDim translates a logical dimension into the axis to use in the
// underlying library call: the dimension is wrapped into [0, logicalRank)
// and shifted by one when a leading batch axis is present. Rank-0 logical
// tensors accept dims -1 and 0.
func PhysicalDim(logicalRank int, hasBatchDim bool, dim int) (int, error) {
	effective := logicalRank
	if effective == 0 {
		effective = 1
	}
	wrapped := dim
	if wrapped < 0 {
		wrapped += effective
	}
	if wrapped < 0 || wrapped >= effective {
		return 0, fmt.Errorf("vmap: dimension %d out of range for logical rank %d", dim, logicalRank)
	}
	if hasBatchDim {
		return wrapped + 1, nil
	}
	return wrapped, nil
}

// unsqueeze and squeeze wrap the library calls for axes known to be valid.

func unsqueeze(t *tensor.RawTensor, axis int) *tensor.RawTensor {
	r, err := tensor.Unsqueeze(t, axis)
	if err != nil {
		panic(fmt.Sprintf("vmap: %v", err))
	}
	return r
}

func squeeze(t *tensor.RawTensor, axis int) *tensor.RawTensor {
	r, err := tensor.Squeeze(t, axis)
	if err != nil {
		panic(fmt.Sprintf("vmap: %v", err))
	}
	return r
}
