package tensor

import "fmt"

// advancedPlan is the normalized form of an advanced-indexing operation:
// one entry per dimension of the base tensor, where nil means "full slice"
// and a non-nil entry holds that dimension's index values, already broadcast
// to the common index shape.
type advancedPlan struct {
	perDim   [][]int // index values per advanced dim, nil for full-slice dims
	bShape   Shape   // broadcast shape shared by all index tensors
	outShape Shape   // shape of the selection
	first    int     // position of the advanced block when contiguous
	count    int     // number of advanced dims
	front    bool    // true when the advanced block moves to the front
}

// resolveAdvancedIndex validates and normalizes an optional index list
// against x. Boolean masks consume as many dimensions as their rank and are
// expanded to integer coordinates. Integer indices broadcast together.
//
// Placement follows the NumPy rule: a contiguous block of advanced indices
// keeps its position in the result; a split block moves the broadcast
// dimensions to the front.
func resolveAdvancedIndex(x *RawTensor, indices []*RawTensor) (*advancedPlan, error) {
	// One entry per dimension of x, expanding bool masks.
	perDimTensors := make([]*RawTensor, 0, x.Rank())
	for _, ind := range indices {
		switch {
		case ind == nil:
			perDimTensors = append(perDimTensors, nil)
		case ind.dtype == Bool:
			m := ind.Rank()
			if m == 0 {
				return nil, fmt.Errorf("advanced index: zero-dim boolean mask is not supported")
			}
			cur := len(perDimTensors)
			if cur+m > x.Rank() {
				return nil, fmt.Errorf("advanced index: too many indices for shape %v", x.shape)
			}
			if !ind.shape.Equal(x.shape[cur : cur+m]) {
				return nil, fmt.Errorf("advanced index: mask shape %v does not match input dims %v", ind.shape, Shape(x.shape[cur:cur+m]))
			}
			coords, err := nonzero(ind)
			if err != nil {
				return nil, err
			}
			perDimTensors = append(perDimTensors, coords...)
		case ind.dtype.IsInt():
			perDimTensors = append(perDimTensors, ind)
		default:
			return nil, fmt.Errorf("advanced index: unsupported index dtype %s", ind.dtype)
		}
	}
	if len(perDimTensors) > x.Rank() {
		return nil, fmt.Errorf("advanced index: too many indices (%d) for shape %v", len(perDimTensors), x.shape)
	}
	for len(perDimTensors) < x.Rank() {
		perDimTensors = append(perDimTensors, nil)
	}

	plan := &advancedPlan{
		perDim: make([][]int, x.Rank()),
		first:  -1,
	}

	// Broadcast all present index tensors to a common shape.
	shapes := make([]Shape, 0, len(perDimTensors))
	last := -1
	for d, t := range perDimTensors {
		if t == nil {
			continue
		}
		shapes = append(shapes, t.shape)
		if plan.first < 0 {
			plan.first = d
		}
		last = d
		plan.count++
	}

	if plan.count == 0 {
		plan.bShape = Shape{}
		plan.outShape = x.shape.Clone()
		plan.first = 0
		return plan, nil
	}

	bShape, err := BroadcastAll(shapes...)
	if err != nil {
		return nil, fmt.Errorf("advanced index: %w", err)
	}
	plan.bShape = bShape
	plan.front = last-plan.first+1 != plan.count

	for d, t := range perDimTensors {
		if t == nil {
			continue
		}
		expanded, err := Expand(t, bShape)
		if err != nil {
			return nil, fmt.Errorf("advanced index: %w", err)
		}
		vals, err := expanded.intSlice()
		if err != nil {
			return nil, fmt.Errorf("advanced index: %w", err)
		}
		for i, orig := range vals {
			v := orig
			if v < 0 {
				v += x.shape[d]
			}
			if v < 0 || v >= x.shape[d] {
				return nil, fmt.Errorf("advanced index: index %d out of range for dim %d (size %d)", orig, d, x.shape[d])
			}
			vals[i] = v
		}
		plan.perDim[d] = vals
	}

	// Selection shape per NumPy placement.
	out := make(Shape, 0, x.Rank()-plan.count+len(bShape))
	if plan.front {
		out = append(out, bShape...)
		for d, vals := range plan.perDim {
			if vals == nil {
				out = append(out, x.shape[d])
			}
		}
	} else {
		out = append(out, x.shape[:plan.first]...)
		out = append(out, bShape...)
		out = append(out, x.shape[plan.first+plan.count:]...)
	}
	plan.outShape = out

	return plan, nil
}

// sourceOffset maps coordinates of the selection to a flat offset into x.
func (p *advancedPlan) sourceOffset(coords []int, xShape Shape, xStrides, bStrides []int) int {
	bRank := len(p.bShape)
	off := 0
	free := 0
	var bOff int
	if p.front {
		bOff = coordsToOffset(coords[:bRank], bStrides)
		free = bRank
	} else {
		bOff = coordsToOffset(coords[p.first:p.first+bRank], bStrides)
	}

	for d := 0; d < len(xShape); d++ {
		var c int
		switch {
		case p.perDim[d] != nil:
			c = p.perDim[d][bOff]
		case p.front:
			c = coords[free]
			free++
		case d < p.first:
			c = coords[d]
		default:
			c = coords[d-p.count+bRank]
		}
		off += c * xStrides[d]
	}
	return off
}

// Index performs advanced indexing on x: indices holds one optional entry
// per leading dimension (nil selects the whole axis). Integer index tensors
// broadcast together; boolean masks select by predicate.
//
// Example:
//
//	x: shape [4, 5]
//	Index(x, []*RawTensor{rows})            // rows: int tensor, shape [k] → [k, 5]
//	Index(x, []*RawTensor{nil, cols})       // cols: int tensor, shape [k] → [4, k]
func Index(x *RawTensor, indices []*RawTensor) (*RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("Index: input tensor is nil")
	}
	plan, err := resolveAdvancedIndex(x, indices)
	if err != nil {
		return nil, fmt.Errorf("Index: %w", err)
	}

	out, err := NewRaw(plan.outShape, x.dtype, x.device)
	if err != nil {
		return nil, fmt.Errorf("Index: %w", err)
	}

	outStrides := plan.outShape.ComputeStrides()
	xStrides := x.shape.ComputeStrides()
	bStrides := plan.bShape.ComputeStrides()
	coords := make([]int, len(plan.outShape))
	for i := 0; i < out.NumElements(); i++ {
		offsetToCoords(i, outStrides, coords)
		copyElem(out, x, i, plan.sourceOffset(coords, x.shape, xStrides, bStrides))
	}

	return out, nil
}

// IndexPut writes values into x (in place) at the positions an equivalent
// Index call would read. values broadcasts against the selection shape.
// When accumulate is set, values are added instead of assigned; duplicate
// indices then accumulate, otherwise the write order is unspecified.
func IndexPut(x *RawTensor, indices []*RawTensor, values *RawTensor, accumulate bool) error {
	if x == nil || values == nil {
		return fmt.Errorf("IndexPut: input tensors cannot be nil")
	}
	if values.dtype != x.dtype {
		return fmt.Errorf("IndexPut: values dtype %s != input dtype %s", values.dtype, x.dtype)
	}
	plan, err := resolveAdvancedIndex(x, indices)
	if err != nil {
		return fmt.Errorf("IndexPut: %w", err)
	}

	// values must broadcast to the selection shape.
	sel := plan.outShape
	bc, err := BroadcastShapes(values.shape, sel)
	if err != nil || !bc.Equal(sel) {
		return fmt.Errorf("IndexPut: values shape %v does not broadcast to selection shape %v", values.shape, sel)
	}

	reduce := ""
	if accumulate {
		reduce = ReduceAdd
	}
	apply, err := combiner(x, values, reduce)
	if err != nil {
		return fmt.Errorf("IndexPut: %w", err)
	}

	valOffsets := broadcastOffsets(values.shape, sel)
	selStrides := sel.ComputeStrides()
	xStrides := x.shape.ComputeStrides()
	bStrides := plan.bShape.ComputeStrides()
	coords := make([]int, len(sel))
	for i := 0; i < sel.NumElements(); i++ {
		offsetToCoords(i, selStrides, coords)
		apply(plan.sourceOffset(coords, x.shape, xStrides, bStrides), valOffsets[i])
	}

	return nil
}

// nonzero returns the coordinates of true elements of a boolean mask as one
// 1-D Int64 tensor per mask dimension, in row-major order.
func nonzero(mask *RawTensor) ([]*RawTensor, error) {
	data := mask.AsBool()
	n := 0
	for _, v := range data {
		if v {
			n++
		}
	}

	m := mask.Rank()
	outs := make([]*RawTensor, m)
	cols := make([][]int64, m)
	for d := 0; d < m; d++ {
		t, err := NewRaw(Shape{n}, Int64, mask.device)
		if err != nil {
			return nil, fmt.Errorf("advanced index: %w", err)
		}
		outs[d] = t
		cols[d] = t.AsInt64()
	}

	strides := mask.shape.ComputeStrides()
	coords := make([]int, m)
	k := 0
	for i, v := range data {
		if !v {
			continue
		}
		offsetToCoords(i, strides, coords)
		for d := 0; d < m; d++ {
			cols[d][k] = int64(coords[d])
		}
		k++
	}

	return outs, nil
}
