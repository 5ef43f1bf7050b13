package vmap

import "github.com/born-ml/vmap/internal/tensor"

// Op names follow the overload-qualified operator schema names used by the
// dispatcher.
const (
	OpIndex              = "index.Tensor"
	OpIndexPut           = "index_put_"
	OpGather             = "gather"
	OpGatherBackward     = "gather_backward"
	OpScatterValue       = "scatter.value"
	OpScatterSrc         = "scatter.src"
	OpScatterAdd         = "scatter_add"
	OpScatterReduce      = "scatter.reduce"
	OpScatterValueReduce = "scatter.value_reduce"
	OpIndexSelect        = "index_select"
	OpIndexCopy          = "index_copy"
)

// Call carries the operands and attributes of one intercepted operation.
// Each op reads only the fields its schema defines; the rest stay zero.
type Call struct {
	Self    Operand
	Indices []Operand // index.Tensor / index_put_: optional entries are nil tensors
	Index   Operand   // single-index ops
	Source  Operand   // scatter src / index_copy source / index_put_ values
	Grad    Operand   // gather_backward

	Dim        int
	Value      float64
	Reduce     string
	Accumulate bool
	SparseGrad bool
}

// Result is a batched tensor as returned by a rule: the physical tensor and
// the axis holding its batch dimension. In-place ops mutate Call.Self and
// return its operand unchanged.
type Result struct {
	Tensor   *tensor.RawTensor
	BatchDim BatchDim
}

// Rule adapts one operation to batched operands.
type Rule func(Call) (Result, error)

var rules = map[string]Rule{
	OpIndex: func(c Call) (Result, error) {
		indices, bdims := splitOperands(c.Indices)
		t, bd, err := IndexBatchRule(c.Self.Tensor, c.Self.BatchDim, indices, bdims)
		return Result{t, bd}, err
	},
	OpIndexPut: func(c Call) (Result, error) {
		indices, bdims := splitOperands(c.Indices)
		err := IndexPutBatchRule(
			c.Self.Tensor, c.Self.BatchDim,
			indices, bdims,
			c.Source.Tensor, c.Source.BatchDim,
			c.Accumulate,
		)
		return Result{c.Self.Tensor, c.Self.BatchDim}, err
	},
	OpGather: func(c Call) (Result, error) {
		t, bd, err := GatherBatchRule(c.Self, c.Dim, c.Index, c.SparseGrad)
		return Result{t, bd}, err
	},
	OpGatherBackward: func(c Call) (Result, error) {
		t, bd, err := GatherBackwardBatchRule(c.Grad, c.Self, c.Dim, c.Index, c.SparseGrad)
		return Result{t, bd}, err
	},
	OpScatterValue: func(c Call) (Result, error) {
		t, bd, err := ScatterValueBatchRule(c.Self, c.Dim, c.Index, c.Value)
		return Result{t, bd}, err
	},
	OpScatterSrc: func(c Call) (Result, error) {
		t, bd, err := ScatterSrcBatchRule(c.Self, c.Dim, c.Index, c.Source)
		return Result{t, bd}, err
	},
	OpScatterAdd: func(c Call) (Result, error) {
		t, bd, err := ScatterAddBatchRule(c.Self, c.Dim, c.Index, c.Source)
		return Result{t, bd}, err
	},
	OpScatterReduce: func(c Call) (Result, error) {
		t, bd, err := ScatterReduceBatchRule(c.Self, c.Dim, c.Index, c.Source, c.Reduce)
		return Result{t, bd}, err
	},
	OpScatterValueReduce: func(c Call) (Result, error) {
		t, bd, err := ScatterValueReduceBatchRule(c.Self, c.Dim, c.Index, c.Value, c.Reduce)
		return Result{t, bd}, err
	},
	OpIndexSelect: func(c Call) (Result, error) {
		t, bd, err := IndexSelectBatchRule(c.Self, c.Dim, c.Index)
		return Result{t, bd}, err
	},
	OpIndexCopy: func(c Call) (Result, error) {
		t, bd, err := IndexCopyBatchRule(c.Self, c.Dim, c.Index, c.Source)
		return Result{t, bd}, err
	},
}

// RuleFor looks up the batching rule registered for an op name.
func RuleFor(op string) (Rule, bool) {
	r, ok := rules[op]
	return r, ok
}

// Ops lists every op name with a registered rule.
func Ops() []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	return names
}

func splitOperands(ops []Operand) ([]*tensor.RawTensor, []BatchDim) {
	tensors := make([]*tensor.RawTensor, len(ops))
	bdims := make([]BatchDim, len(ops))
	for i, op := range ops {
		tensors[i] = op.Tensor
		bdims[i] = op.BatchDim
	}
	return tensors, bdims
}
