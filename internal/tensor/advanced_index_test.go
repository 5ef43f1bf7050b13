package tensor

import (
	"testing"
)

// Index Tests

func TestIndexRows(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	rows := mustInt64(t, []int64{1, 0}, Shape{2})

	out, err := Index(x, []*RawTensor{rows})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertEqualShape(t, Shape{2, 3}, out.Shape(), "Index rows shape")
	assertFloat32s(t, []float32{4, 5, 6, 1, 2, 3}, out.AsFloat32(), "Index rows values")
}

func TestIndexPair(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	rows := mustInt64(t, []int64{0, 1}, Shape{2})
	cols := mustInt64(t, []int64{2, 0}, Shape{2})

	out, err := Index(x, []*RawTensor{rows, cols})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertEqualShape(t, Shape{2}, out.Shape(), "Index pair shape")
	assertFloat32s(t, []float32{3, 4}, out.AsFloat32(), "Index pair values")
}

func TestIndexSkipLeadingDim(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	cols := mustInt64(t, []int64{2, 0}, Shape{2})

	// nil keeps the whole leading axis; the advanced block stays at dim 1.
	out, err := Index(x, []*RawTensor{nil, cols})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertEqualShape(t, Shape{2, 2}, out.Shape(), "Index skip shape")
	assertFloat32s(t, []float32{3, 1, 6, 4}, out.AsFloat32(), "Index skip values")
}

func TestIndexSplitBlockMovesFront(t *testing.T) {
	// x[i][j][k] = i*6 + j*2 + k
	data := make([]float32, 12)
	for i := range data {
		data[i] = float32(i)
	}
	x := mustFloat32(t, data, Shape{2, 3, 2})
	first := mustInt64(t, []int64{1}, Shape{1})
	last := mustInt64(t, []int64{0}, Shape{1})

	// The advanced dims are split by a full slice, so the broadcast
	// dimensions move to the front of the result.
	out, err := Index(x, []*RawTensor{first, nil, last})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertEqualShape(t, Shape{1, 3}, out.Shape(), "Index split shape")
	assertFloat32s(t, []float32{6, 8, 10}, out.AsFloat32(), "Index split values")
}

func TestIndexBroadcast(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	rows := mustInt64(t, []int64{0, 1}, Shape{2, 1})
	cols := mustInt64(t, []int64{0, 2}, Shape{2})

	out, err := Index(x, []*RawTensor{rows, cols})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertEqualShape(t, Shape{2, 2}, out.Shape(), "Index broadcast shape")
	assertFloat32s(t, []float32{1, 3, 4, 6}, out.AsFloat32(), "Index broadcast values")
}

func TestIndexNegative(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	rows := mustInt64(t, []int64{-1}, Shape{1})

	out, err := Index(x, []*RawTensor{rows})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertFloat32s(t, []float32{4, 5, 6}, out.AsFloat32(), "Index negative wrap")
}

func TestIndexBoolMask(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	mask := mustBool(t, []bool{true, false, true, false, true, false}, Shape{2, 3})

	out, err := Index(x, []*RawTensor{mask})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertEqualShape(t, Shape{3}, out.Shape(), "Index mask shape")
	assertFloat32s(t, []float32{1, 3, 5}, out.AsFloat32(), "Index mask values")
}

func TestIndexBoolMaskEmpty(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3}, Shape{3})
	mask := mustBool(t, []bool{false, false, false}, Shape{3})

	out, err := Index(x, []*RawTensor{mask})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertEqualShape(t, Shape{0}, out.Shape(), "Index empty mask shape")
}

func TestIndexBoolMaskShapeMismatch(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	mask := mustBool(t, []bool{true, false}, Shape{2})

	// A rank-1 mask consumes only dim 0, whose size must match.
	out, err := Index(x, []*RawTensor{mask})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertEqualShape(t, Shape{1, 3}, out.Shape(), "Index partial mask shape")
	assertFloat32s(t, []float32{1, 2, 3}, out.AsFloat32(), "Index partial mask values")
}

func TestIndexTooManyIndices(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3}, Shape{3})
	a := mustInt64(t, []int64{0}, Shape{1})
	b := mustInt64(t, []int64{0}, Shape{1})

	if _, err := Index(x, []*RawTensor{a, b}); err == nil {
		t.Error("Index should reject more indices than dimensions")
	}
}

func TestIndexOutOfRange(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3}, Shape{3})
	idx := mustInt64(t, []int64{5}, Shape{1})

	if _, err := Index(x, []*RawTensor{idx}); err == nil {
		t.Error("Index should reject an out-of-range index")
	}
}

// IndexPut Tests

func TestIndexPutAssign(t *testing.T) {
	x := mustFloat32(t, []float32{0, 0, 0, 0, 0, 0}, Shape{2, 3})
	rows := mustInt64(t, []int64{0, 1}, Shape{2})
	cols := mustInt64(t, []int64{0, 2}, Shape{2})
	values := mustFloat32(t, []float32{9, 8}, Shape{2})

	if err := IndexPut(x, []*RawTensor{rows, cols}, values, false); err != nil {
		t.Fatalf("IndexPut: %v", err)
	}
	assertFloat32s(t, []float32{9, 0, 0, 0, 0, 8}, x.AsFloat32(), "IndexPut assign")
}

func TestIndexPutAccumulate(t *testing.T) {
	x := mustFloat32(t, []float32{0, 0, 0, 0, 0, 0}, Shape{2, 3})
	rows := mustInt64(t, []int64{1, 1}, Shape{2})
	cols := mustInt64(t, []int64{1, 1}, Shape{2})
	values := mustFloat32(t, []float32{5, 5}, Shape{2})

	if err := IndexPut(x, []*RawTensor{rows, cols}, values, true); err != nil {
		t.Fatalf("IndexPut: %v", err)
	}
	assertFloat32s(t, []float32{0, 0, 0, 0, 10, 0}, x.AsFloat32(), "IndexPut accumulate duplicates")
}

func TestIndexPutBroadcastValues(t *testing.T) {
	x := mustFloat32(t, []float32{0, 0, 0}, Shape{3})
	idx := mustInt64(t, []int64{0, 2}, Shape{2})
	values := mustFloat32(t, []float32{7}, Shape{1})

	if err := IndexPut(x, []*RawTensor{idx}, values, false); err != nil {
		t.Fatalf("IndexPut: %v", err)
	}
	assertFloat32s(t, []float32{7, 0, 7}, x.AsFloat32(), "IndexPut broadcast values")
}

func TestIndexPutBoolMask(t *testing.T) {
	x := mustFloat32(t, []float32{1, 2, 3, 4}, Shape{4})
	mask := mustBool(t, []bool{false, true, false, true}, Shape{4})
	values := mustFloat32(t, []float32{0}, Shape{1})

	if err := IndexPut(x, []*RawTensor{mask}, values, false); err != nil {
		t.Fatalf("IndexPut: %v", err)
	}
	assertFloat32s(t, []float32{1, 0, 3, 0}, x.AsFloat32(), "IndexPut mask")
}

func TestIndexPutValuesShapeMismatch(t *testing.T) {
	x := mustFloat32(t, []float32{0, 0, 0}, Shape{3})
	idx := mustInt64(t, []int64{0, 2}, Shape{2})
	values := mustFloat32(t, []float32{1, 2, 3}, Shape{3})

	if err := IndexPut(x, []*RawTensor{idx}, values, false); err == nil {
		t.Error("IndexPut should reject values that do not broadcast to the selection")
	}
}
