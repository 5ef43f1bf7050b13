// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package vmap exposes the batching rules for indexing and scatter/gather
// tensor operations.
//
// # Overview
//
// A batching rule rewrites one tensor operation so that a single unbatched
// call over batch-augmented tensors reproduces per-example semantics. Every
// tensor operand travels with an optional batch dimension (BatchDim) naming
// the physical axis that holds the vmap batch; the rule returns the result
// tensor together with the batch dimension it carries.
//
// # Basic Usage
//
//	self, _ := tensor.FromFloat32(data, tensor.Shape{3, 4, 5}, tensor.CPU) // batch of 3
//	idx, _ := tensor.FromInt64(indexData, tensor.Shape{4, 2}, tensor.CPU)
//
//	rule, _ := vmap.RuleFor(vmap.OpGather)
//	res, err := rule(vmap.Call{
//	    Self:  vmap.Operand{Tensor: self, BatchDim: vmap.NewBatchDim(0)},
//	    Index: vmap.Operand{Tensor: idx},
//	    Dim:   1,
//	})
//
// res.Tensor then equals the stack of per-example gather results, with
// res.BatchDim at axis 0.
//
// # Nesting
//
// Context tracks a vmap nesting level. Tensors wrapped at one level look
// unbatched to every other level, which is what lets vmap calls nest.
package vmap
