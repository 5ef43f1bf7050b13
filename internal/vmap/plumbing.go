package vmap

import (
	"github.com/pkg/errors"

	"github.com/born-ml/vmap/internal/tensor"
)

// Context identifies one vmap nesting level. Tensors wrapped at a deeper
// level look unbatched to shallower contexts, which is what lets vmap nest:
// each level only sees its own batch dimension.
type Context struct {
	level int
}

// NewContext creates a context for the given nesting level.
func NewContext(level int) Context {
	return Context{level: level}
}

// Level returns the nesting level.
func (c Context) Level() int {
	return c.level
}

// Tensor is a physical tensor annotated with the vmap level that owns its
// batch dimension.
type Tensor struct {
	raw   *tensor.RawTensor
	bdim  BatchDim
	level int
}

// Wrap annotates a physical tensor with a batch dimension owned by this
// context. An absent batch dim produces a plain, unbatched wrapper.
func (c Context) Wrap(raw *tensor.RawTensor, bdim BatchDim) Tensor {
	return Tensor{raw: raw, bdim: bdim, level: c.level}
}

// Unwrap recovers the physical tensor and the batch dimension visible to
// this context. Tensors wrapped at another level are opaque: they unwrap
// with no batch dimension.
func (c Context) Unwrap(t Tensor) (*tensor.RawTensor, BatchDim) {
	if t.level != c.level {
		return t.raw, BatchDim{}
	}
	return t.raw, t.bdim
}

// Raw returns the physical tensor without level bookkeeping.
func (t Tensor) Raw() *tensor.RawTensor {
	return t.raw
}

// BatchDim returns the wrapper's batch dimension annotation.
func (t Tensor) BatchDim() BatchDim {
	return t.bdim
}

// IndexPlumbing dispatches an advanced-index read: if no operand is batched
// at this level, the unbatched kernel runs directly; otherwise the batching
// rule rewrites the call.
func (c Context) IndexPlumbing(self Tensor, indices []Tensor) (Tensor, error) {
	selfRaw, selfBdim := c.Unwrap(self)

	rawIndices := make([]*tensor.RawTensor, len(indices))
	bdims := make([]BatchDim, len(indices))
	anyBatched := selfBdim.Present()
	for i, ind := range indices {
		rawIndices[i], bdims[i] = c.Unwrap(ind)
		anyBatched = anyBatched || bdims[i].Present()
	}

	if !anyBatched {
		result, err := tensor.Index(selfRaw, rawIndices)
		if err != nil {
			return Tensor{}, errors.Wrap(err, "vmap: index")
		}
		return c.Wrap(result, BatchDim{}), nil
	}

	result, bdim, err := IndexBatchRule(selfRaw, selfBdim, rawIndices, bdims)
	if err != nil {
		return Tensor{}, err
	}
	return c.Wrap(result, bdim), nil
}

// IndexPutPlumbing dispatches an advanced-index write, mutating self's
// physical tensor in place.
func (c Context) IndexPutPlumbing(self Tensor, indices []Tensor, values Tensor, accumulate bool) error {
	selfRaw, selfBdim := c.Unwrap(self)
	valuesRaw, valuesBdim := c.Unwrap(values)

	rawIndices := make([]*tensor.RawTensor, len(indices))
	bdims := make([]BatchDim, len(indices))
	anyBatched := selfBdim.Present() || valuesBdim.Present()
	for i, ind := range indices {
		rawIndices[i], bdims[i] = c.Unwrap(ind)
		anyBatched = anyBatched || bdims[i].Present()
	}

	if !anyBatched {
		if err := tensor.IndexPut(selfRaw, rawIndices, valuesRaw, accumulate); err != nil {
			return errors.Wrap(err, "vmap: index_put_")
		}
		return nil
	}

	return IndexPutBatchRule(selfRaw, selfBdim, rawIndices, bdims, valuesRaw, valuesBdim, accumulate)
}
