package vmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/vmap/internal/tensor"
)

func TestIndexPlumbing_UnbatchedFallsThrough(t *testing.T) {
	ctx := NewContext(1)
	self := tf32(t, rangeF32(6, 0), tensor.Shape{2, 3})
	rows := ti64(t, []int64{1, 0}, tensor.Shape{2})

	result, err := ctx.IndexPlumbing(
		ctx.Wrap(self, BatchDim{}),
		[]Tensor{ctx.Wrap(rows, BatchDim{})})
	require.NoError(t, err)

	assert.False(t, result.BatchDim().Present())
	want, err := tensor.Index(self, []*tensor.RawTensor{rows})
	require.NoError(t, err)
	assert.Equal(t, want.Data(), result.Raw().Data())
}

func TestIndexPlumbing_Batched(t *testing.T) {
	ctx := NewContext(1)
	selfParts := perExampleF32(t, tensor.Shape{2, 3})
	self := batchedOperand(t, selfParts, 0)
	rows := ti64(t, []int64{1, 0}, tensor.Shape{2})

	result, err := ctx.IndexPlumbing(
		ctx.Wrap(self.Tensor, self.BatchDim),
		[]Tensor{ctx.Wrap(rows, BatchDim{})})
	require.NoError(t, err)

	assertMatchesLoop(t, result.Raw(), result.BatchDim(), batchSize, func(i int) *tensor.RawTensor {
		out, err := tensor.Index(selfParts[i], []*tensor.RawTensor{rows})
		require.NoError(t, err)
		return out
	})
}

func TestIndexPlumbing_OtherLevelLooksUnbatched(t *testing.T) {
	outer := NewContext(1)
	inner := NewContext(2)
	self := tf32(t, rangeF32(6, 0), tensor.Shape{2, 3})
	rows := ti64(t, []int64{1, 0}, tensor.Shape{2})

	// A tensor batched at the inner level is opaque to the outer context.
	wrapped := inner.Wrap(self, NewBatchDim(0))
	_, bdim := outer.Unwrap(wrapped)
	assert.False(t, bdim.Present())

	result, err := outer.IndexPlumbing(wrapped, []Tensor{outer.Wrap(rows, BatchDim{})})
	require.NoError(t, err)
	assert.False(t, result.BatchDim().Present())
}

func TestIndexPutPlumbing_Unbatched(t *testing.T) {
	ctx := NewContext(1)
	self := tf32(t, []float32{0, 0, 0}, tensor.Shape{3})
	idx := ti64(t, []int64{0, 2}, tensor.Shape{2})
	values := tf32(t, []float32{7}, tensor.Shape{1})

	err := ctx.IndexPutPlumbing(
		ctx.Wrap(self, BatchDim{}),
		[]Tensor{ctx.Wrap(idx, BatchDim{})},
		ctx.Wrap(values, BatchDim{}), false)
	require.NoError(t, err)
	assert.Equal(t, []float32{7, 0, 7}, self.AsFloat32())
}

func TestIndexPutPlumbing_BatchedReceiver(t *testing.T) {
	ctx := NewContext(1)
	selfParts := perExampleF32(t, tensor.Shape{2, 4})
	self := batchedOperand(t, selfParts, 0)
	rows := ti64(t, []int64{1, 0}, tensor.Shape{2})
	values := tf32(t, rangeF32(4, 50), tensor.Shape{4})

	err := ctx.IndexPutPlumbing(
		ctx.Wrap(self.Tensor, self.BatchDim),
		[]Tensor{ctx.Wrap(rows, BatchDim{})},
		ctx.Wrap(values, BatchDim{}), false)
	require.NoError(t, err)

	assertMatchesLoop(t, self.Tensor, self.BatchDim, batchSize, func(i int) *tensor.RawTensor {
		expected := selfParts[i].Copy()
		require.NoError(t, tensor.IndexPut(expected, []*tensor.RawTensor{rows}, values, false))
		return expected
	})
}

func TestIndexPutPlumbing_UnbatchedReceiverWithBatchedValues(t *testing.T) {
	ctx := NewContext(1)
	self := tf32(t, rangeF32(8, 0), tensor.Shape{2, 4})
	rows := ti64(t, []int64{1, 0}, tensor.Shape{2})
	valueParts := perExampleF32(t, tensor.Shape{2, 4})
	values := batchedOperand(t, valueParts, 0)

	err := ctx.IndexPutPlumbing(
		ctx.Wrap(self, BatchDim{}),
		[]Tensor{ctx.Wrap(rows, BatchDim{})},
		ctx.Wrap(values.Tensor, values.BatchDim), false)
	assert.ErrorIs(t, err, ErrInplaceOnUnbatched)
}
