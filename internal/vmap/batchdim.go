// Package vmap implements batching rules for indexing and scatter/gather
// tensor operations: each rule rewrites one operation so that a single
// unbatched call over batch-augmented (physical) tensors reproduces the
// per-example (logical) semantics.
//
// Rules consume every tensor operand paired with an optional batch
// dimension and return the result tensor plus the batch dimension it
// carries. Context and its Wrap/Unwrap methods form the boundary toward the
// dispatcher that intercepts operations and tracks nesting levels.
package vmap

import (
	"fmt"

	"github.com/born-ml/vmap/internal/tensor"
)

// BatchDim identifies which physical axis of a tensor holds the vmap batch.
// The zero value means the tensor is not batched at the current level.
type BatchDim struct {
	dim     int
	present bool
}

// NewBatchDim marks a tensor as batched along the given physical axis.
func NewBatchDim(dim int) BatchDim {
	if dim < 0 {
		panic(fmt.Sprintf("vmap: batch dim must be non-negative, got %d", dim))
	}
	return BatchDim{dim: dim, present: true}
}

// Present reports whether a batch dimension exists.
func (b BatchDim) Present() bool {
	return b.present
}

// Dim returns the physical batch axis. Panics if no batch dimension exists.
func (b BatchDim) Dim() int {
	if !b.present {
		panic("vmap: Dim called on an absent batch dim")
	}
	return b.dim
}

// String returns "none" or the axis number.
func (b BatchDim) String() string {
	if !b.present {
		return "none"
	}
	return fmt.Sprintf("%d", b.dim)
}

// Operand pairs a tensor with its optional batch dimension.
type Operand struct {
	Tensor   *tensor.RawTensor
	BatchDim BatchDim
}
