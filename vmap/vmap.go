// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package vmap

import (
	"github.com/born-ml/vmap/internal/vmap"
)

// BatchDim identifies which physical axis of a tensor holds the vmap batch.
// The zero value means the tensor is not batched.
type BatchDim = vmap.BatchDim

// Operand pairs a tensor with its optional batch dimension.
type Operand = vmap.Operand

// Call carries the operands and attributes of one intercepted operation.
type Call = vmap.Call

// Result is a batched tensor as returned by a rule.
type Result = vmap.Result

// Rule adapts one operation to batched operands.
type Rule = vmap.Rule

// Context identifies one vmap nesting level.
type Context = vmap.Context

// Tensor is a physical tensor annotated with the vmap level that owns its
// batch dimension.
type Tensor = vmap.Tensor

// Op names with registered batching rules.
const (
	OpIndex              = vmap.OpIndex
	OpIndexPut           = vmap.OpIndexPut
	OpGather             = vmap.OpGather
	OpGatherBackward     = vmap.OpGatherBackward
	OpScatterValue       = vmap.OpScatterValue
	OpScatterSrc         = vmap.OpScatterSrc
	OpScatterAdd         = vmap.OpScatterAdd
	OpScatterReduce      = vmap.OpScatterReduce
	OpScatterValueReduce = vmap.OpScatterValueReduce
	OpIndexSelect        = vmap.OpIndexSelect
	OpIndexCopy          = vmap.OpIndexCopy
)

// Sentinel errors.
var (
	ErrBatchedBoolMask    = vmap.ErrBatchedBoolMask
	ErrInplaceOnUnbatched = vmap.ErrInplaceOnUnbatched
)

// NewBatchDim marks a tensor as batched along the given physical axis.
func NewBatchDim(dim int) BatchDim {
	return vmap.NewBatchDim(dim)
}

// NewContext creates a context for the given nesting level.
func NewContext(level int) Context {
	return vmap.NewContext(level)
}

// RuleFor looks up the batching rule registered for an op name.
func RuleFor(op string) (Rule, bool) {
	return vmap.RuleFor(op)
}

// Ops lists every op name with a registered rule.
func Ops() []string {
	return vmap.Ops()
}
