// Copyright 2025 The Loom Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the host-side tensors the
// Loom data pipeline produces.
//
// The package re-exports the internal tensor implementation: a generic
// Tensor[T] over a flat backing buffer with shape/stride views (Narrow,
// Chunk), concatenation, end-padding, and contiguity control.
//
// Example:
//
//	t := tensor.Zeros[int32](tensor.Shape{2, 12})
//	shard := t.Chunk(4, 1)[0].Contiguous()
package tensor

import (
	"github.com/loom-ml/loom/internal/tensor"
)

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} represents a 2×3 matrix.
type Shape = tensor.Shape

// Tensor is a generic host-side tensor; see the internal package for the
// full method set (At/Set, Narrow, Chunk, Contiguous, Row, ...).
type Tensor[T DType] = tensor.Tensor[T]

// New creates a Tensor over an existing backing slice (no copy).
func New[T DType](data []T, shape Shape) (*Tensor[T], error) {
	return tensor.New(data, shape)
}

// FromSlice creates a tensor by copying a Go slice.
func FromSlice[T DType](data []T, shape Shape) (*Tensor[T], error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with the zero value of T.
func Zeros[T DType](shape Shape) *Tensor[T] {
	return tensor.Zeros[T](shape)
}

// Full creates a tensor filled with a specific value.
func Full[T DType](shape Shape, value T) *Tensor[T] {
	return tensor.Full(shape, value)
}

// Cat concatenates tensors along the specified dimension.
func Cat[T DType](tensors []*Tensor[T], dim int) *Tensor[T] {
	return tensor.Cat(tensors, dim)
}

// PadEnd extends a tensor by count fill positions at the end of a
// dimension, returning a fresh tensor.
func PadEnd[T DType](t *Tensor[T], dim, count int, fill T) *Tensor[T] {
	return tensor.PadEnd(t, dim, count, fill)
}
