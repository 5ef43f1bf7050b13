// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensor representation and the indexing,
// gather and scatter kernels used by the vmap batching rules.
//
// # Overview
//
// RawTensor is a contiguous row-major buffer with shape, stride, dtype and
// device metadata. The package provides:
//   - Creation helpers (Arange, Full, FromFloat32, ...)
//   - Shape manipulation (Reshape, Expand, MoveDim, Stack, ...)
//   - Indexing kernels (Gather, Scatter*, IndexSelect, IndexCopy)
//   - NumPy-style advanced indexing (Index, IndexPut)
//
// # Basic Usage
//
//	x, _ := tensor.FromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
//	idx, _ := tensor.FromInt64([]int64{2, 0}, tensor.Shape{2}, tensor.CPU)
//	cols, _ := tensor.IndexSelect(x, 1, idx) // shape (2, 2)
//
// # Broadcasting
//
// Index tensors and value tensors follow NumPy broadcasting rules; see
// BroadcastShapes and BroadcastAll.
//
// # Memory Management
//
// The underlying data is reference-counted: Clone shares the buffer, Copy
// duplicates it.
package tensor
