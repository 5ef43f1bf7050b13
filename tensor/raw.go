// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/vmap/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Copy-on-Write semantics via Clone()
//   - Reference counting for efficient memory management
type RawTensor = tensor.RawTensor

// Shape describes tensor dimensions in row-major order.
type Shape = tensor.Shape

// DataType identifies the element type of a tensor.
type DataType = tensor.DataType

// Device identifies where tensor data lives.
type Device = tensor.Device

// Element types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Bool    = tensor.Bool
)

// Devices.
const (
	CPU = tensor.CPU
)

// Reduction modes for ScatterReduce and ScatterValueReduce.
const (
	ReduceAdd      = tensor.ReduceAdd
	ReduceMultiply = tensor.ReduceMultiply
)

// NewRaw allocates a zeroed tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromFloat32 builds a Float32 tensor from a slice.
func FromFloat32(data []float32, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape, device)
}

// FromInt64 builds an Int64 tensor from a slice.
func FromInt64(data []int64, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromInt64(data, shape, device)
}

// FromBool builds a Bool tensor from a slice.
func FromBool(data []bool, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromBool(data, shape, device)
}

// Arange builds a 1-D tensor holding [start, end).
func Arange(start, end int, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Arange(start, end, dtype, device)
}

// Full builds a tensor filled with a scalar value.
func Full(shape Shape, value float64, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Full(shape, value, dtype, device)
}

// ZerosLike builds a zeroed tensor with the shape and dtype of x.
func ZerosLike(x *RawTensor) (*RawTensor, error) {
	return tensor.ZerosLike(x)
}
