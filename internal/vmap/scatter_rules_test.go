package vmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/vmap/internal/tensor"
)

const batchSize = 3

// perExampleF32 builds batchSize logical tensors with distinct values.
func perExampleF32(t *testing.T, shape tensor.Shape) []*tensor.RawTensor {
	t.Helper()
	parts := make([]*tensor.RawTensor, batchSize)
	n := shape.NumElements()
	for e := range parts {
		parts[e] = tf32(t, rangeF32(n, float32(e*100)), shape)
	}
	return parts
}

// perExampleIndex builds batchSize logical index tensors with values in
// [0, limit).
func perExampleIndex(t *testing.T, shape tensor.Shape, limit int) []*tensor.RawTensor {
	t.Helper()
	parts := make([]*tensor.RawTensor, batchSize)
	n := shape.NumElements()
	for e := range parts {
		data := make([]int64, n)
		for i := range data {
			data[i] = int64((i*2 + e) % limit)
		}
		parts[e] = ti64(t, data, shape)
	}
	return parts
}

// Gather Tests

func TestGatherBatchRule_SelfBatched(t *testing.T) {
	selfParts := perExampleF32(t, tensor.Shape{4, 5})
	index := ti64(t, []int64{4, 0, 1, 3, 2, 2, 0, 1}, tensor.Shape{4, 2})

	self := batchedOperand(t, selfParts, 0)
	result, bdim, err := GatherBatchRule(self, 1, sharedOperand(index), false)
	require.NoError(t, err)

	assertMatchesLoop(t, result, bdim, batchSize, func(i int) *tensor.RawTensor {
		out, err := tensor.Gather(selfParts[i], 1, index)
		require.NoError(t, err)
		return out
	})
}

func TestGatherBatchRule_IndexBatched(t *testing.T) {
	self := tf32(t, rangeF32(20, 0), tensor.Shape{4, 5})
	indexParts := perExampleIndex(t, tensor.Shape{4, 2}, 5)

	index := batchedOperand(t, indexParts, 0)
	result, bdim, err := GatherBatchRule(sharedOperand(self), 1, index, false)
	require.NoError(t, err)

	assertMatchesLoop(t, result, bdim, batchSize, func(i int) *tensor.RawTensor {
		out, err := tensor.Gather(self, 1, indexParts[i])
		require.NoError(t, err)
		return out
	})
}

func TestGatherBatchRule_BothBatched(t *testing.T) {
	selfParts := perExampleF32(t, tensor.Shape{4, 5})
	indexParts := perExampleIndex(t, tensor.Shape{4, 2}, 5)

	// Batch dims sit on different axes on purpose.
	self := batchedOperand(t, selfParts, 0)
	index := batchedOperand(t, indexParts, 1)
	result, bdim, err := GatherBatchRule(self, 1, index, false)
	require.NoError(t, err)

	assertMatchesLoop(t, result, bdim, batchSize, func(i int) *tensor.RawTensor {
		out, err := tensor.Gather(selfParts[i], 1, indexParts[i])
		require.NoError(t, err)
		return out
	})
}

func TestGatherBatchRule_ScalarOperands(t *testing.T) {
	// Per example, gathering element 0 of a scalar returns the scalar.
	self := Operand{tf32(t, []float32{10, 20, 30}, tensor.Shape{batchSize}), NewBatchDim(0)}
	index := Operand{ti64(t, []int64{0, 0, 0}, tensor.Shape{batchSize}), NewBatchDim(0)}

	result, bdim, err := GatherBatchRule(self, 0, index, false)
	require.NoError(t, err)
	require.True(t, bdim.Present())
	assert.True(t, result.Shape().Equal(tensor.Shape{batchSize}))
	assert.Equal(t, []float32{10, 20, 30}, result.AsFloat32())
}

func TestGatherBackwardBatchRule(t *testing.T) {
	gradParts := perExampleF32(t, tensor.Shape{4, 2})
	selfParts := perExampleF32(t, tensor.Shape{4, 5})
	index := ti64(t, []int64{4, 0, 1, 3, 2, 2, 0, 1}, tensor.Shape{4, 2})

	grad := batchedOperand(t, gradParts, 0)
	self := batchedOperand(t, selfParts, 0)
	result, bdim, err := GatherBackwardBatchRule(grad, self, 1, sharedOperand(index), false)
	require.NoError(t, err)

	assertMatchesLoop(t, result, bdim, batchSize, func(i int) *tensor.RawTensor {
		out, err := tensor.GatherBackward(gradParts[i], selfParts[i], 1, index)
		require.NoError(t, err)
		return out
	})
}

// Scatter Tests

func TestScatterSrcBatchRule(t *testing.T) {
	selfParts := perExampleF32(t, tensor.Shape{2, 3})
	indexParts := perExampleIndex(t, tensor.Shape{2, 2}, 3)
	srcParts := perExampleF32(t, tensor.Shape{2, 2})

	combos := []struct {
		name                string
		selfB, indexB, srcB bool
	}{
		{"self batched", true, false, false},
		{"index batched", false, true, false},
		{"src batched", false, false, true},
		{"all batched", true, true, true},
	}

	for _, combo := range combos {
		t.Run(combo.name, func(t *testing.T) {
			pick := func(parts []*tensor.RawTensor, batched bool) Operand {
				if batched {
					return batchedOperand(t, parts, 0)
				}
				return sharedOperand(parts[0])
			}
			example := func(parts []*tensor.RawTensor, batched bool, i int) *tensor.RawTensor {
				if batched {
					return parts[i]
				}
				return parts[0]
			}

			self := pick(selfParts, combo.selfB)
			index := pick(indexParts, combo.indexB)
			src := pick(srcParts, combo.srcB)

			result, bdim, err := ScatterSrcBatchRule(self, 1, index, src)
			require.NoError(t, err)

			assertMatchesLoop(t, result, bdim, batchSize, func(i int) *tensor.RawTensor {
				out, err := tensor.Scatter(
					example(selfParts, combo.selfB, i), 1,
					example(indexParts, combo.indexB, i),
					example(srcParts, combo.srcB, i))
				require.NoError(t, err)
				return out
			})
		})
	}
}

func TestScatterValueBatchRule(t *testing.T) {
	selfParts := perExampleF32(t, tensor.Shape{2, 3})
	indexParts := perExampleIndex(t, tensor.Shape{2, 2}, 3)

	self := batchedOperand(t, selfParts, 0)
	index := batchedOperand(t, indexParts, 0)
	result, bdim, err := ScatterValueBatchRule(self, 1, index, 9)
	require.NoError(t, err)

	assertMatchesLoop(t, result, bdim, batchSize, func(i int) *tensor.RawTensor {
		out, err := tensor.ScatterValue(selfParts[i], 1, indexParts[i], 9)
		require.NoError(t, err)
		return out
	})
}

func TestScatterValueBatchRule_ScalarOperands(t *testing.T) {
	self := Operand{tf32(t, []float32{1, 2, 3}, tensor.Shape{batchSize}), NewBatchDim(0)}
	index := Operand{ti64(t, []int64{0, 0, 0}, tensor.Shape{batchSize}), NewBatchDim(0)}

	result, bdim, err := ScatterValueBatchRule(self, 0, index, 7)
	require.NoError(t, err)
	require.True(t, bdim.Present())
	assert.True(t, result.Shape().Equal(tensor.Shape{batchSize}))
	assert.Equal(t, []float32{7, 7, 7}, result.AsFloat32())
}

func TestScatterAddBatchRule(t *testing.T) {
	selfParts := perExampleF32(t, tensor.Shape{2, 3})
	indexParts := perExampleIndex(t, tensor.Shape{2, 2}, 3)
	srcParts := perExampleF32(t, tensor.Shape{2, 2})

	self := batchedOperand(t, selfParts, 0)
	index := batchedOperand(t, indexParts, 1)
	src := sharedOperand(srcParts[0])
	result, bdim, err := ScatterAddBatchRule(self, 1, index, src)
	require.NoError(t, err)

	assertMatchesLoop(t, result, bdim, batchSize, func(i int) *tensor.RawTensor {
		out, err := tensor.ScatterAdd(selfParts[i], 1, indexParts[i], srcParts[0])
		require.NoError(t, err)
		return out
	})
}

func TestScatterReduceBatchRule(t *testing.T) {
	selfParts := perExampleF32(t, tensor.Shape{2, 3})
	indexParts := perExampleIndex(t, tensor.Shape{2, 2}, 3)
	srcParts := perExampleF32(t, tensor.Shape{2, 2})

	self := batchedOperand(t, selfParts, 0)
	index := batchedOperand(t, indexParts, 0)
	src := batchedOperand(t, srcParts, 0)
	result, bdim, err := ScatterReduceBatchRule(self, 1, index, src, tensor.ReduceMultiply)
	require.NoError(t, err)

	assertMatchesLoop(t, result, bdim, batchSize, func(i int) *tensor.RawTensor {
		out, err := tensor.ScatterReduce(selfParts[i], 1, indexParts[i], srcParts[i], tensor.ReduceMultiply)
		require.NoError(t, err)
		return out
	})
}

func TestScatterValueReduceBatchRule(t *testing.T) {
	selfParts := perExampleF32(t, tensor.Shape{2, 3})
	indexParts := perExampleIndex(t, tensor.Shape{2, 2}, 3)

	self := batchedOperand(t, selfParts, 0)
	index := sharedOperand(indexParts[0])
	result, bdim, err := ScatterValueReduceBatchRule(self, 1, index, 2, tensor.ReduceAdd)
	require.NoError(t, err)

	assertMatchesLoop(t, result, bdim, batchSize, func(i int) *tensor.RawTensor {
		out, err := tensor.ScatterValueReduce(selfParts[i], 1, indexParts[0], 2, tensor.ReduceAdd)
		require.NoError(t, err)
		return out
	})
}

func TestScatterReduceBatchRule_UnknownMode(t *testing.T) {
	selfParts := perExampleF32(t, tensor.Shape{2, 3})
	indexParts := perExampleIndex(t, tensor.Shape{2, 2}, 3)
	srcParts := perExampleF32(t, tensor.Shape{2, 2})

	_, _, err := ScatterReduceBatchRule(
		batchedOperand(t, selfParts, 0), 1,
		batchedOperand(t, indexParts, 0),
		batchedOperand(t, srcParts, 0), "max")
	assert.Error(t, err)
}
