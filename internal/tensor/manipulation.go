package tensor

import "fmt"

// Narrow returns a view of the tensor restricted to [start, start+length)
// along the specified dimension. Supports negative dim indexing
// (-1 = last dimension). The view shares memory with the parent.
//
// Example:
//
//	x := tensor.Zeros[int32](tensor.Shape{2, 6})
//	y := x.Narrow(1, 2, 3) // Shape: [2, 3], not contiguous
func (t *Tensor[T]) Narrow(dim, start, length int) *Tensor[T] {
	dim = t.resolveDim(dim)
	if start < 0 || length < 0 || start+length > t.shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, t.shape[dim]))
	}
	shape := t.shape.Clone()
	shape[dim] = length
	return &Tensor[T]{
		data:   t.data,
		shape:  shape,
		stride: append([]int(nil), t.stride...),
		offset: t.offset + start*t.stride[dim],
	}
}

// Chunk splits the tensor into n equal views along the specified dimension.
//
// The dimension size must be divisible by n.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	x := tensor.Zeros[int32](tensor.Shape{2, 12})
//	parts := x.Chunk(4, 1) // 4 views of shape [2, 3]
func (t *Tensor[T]) Chunk(n, dim int) []*Tensor[T] {
	dim = t.resolveDim(dim)
	if n <= 0 {
		panic(fmt.Sprintf("chunk: n must be positive, got %d", n))
	}
	if t.shape[dim]%n != 0 {
		panic(fmt.Sprintf("chunk: dimension %d (size %d) not divisible by %d", dim, t.shape[dim], n))
	}
	size := t.shape[dim] / n
	parts := make([]*Tensor[T], n)
	for i := range parts {
		parts[i] = t.Narrow(dim, i*size, size)
	}
	return parts
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation
// dimension. The result is a fresh contiguous tensor.
func Cat[T DType](tensors []*Tensor[T], dim int) *Tensor[T] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}
	if len(tensors) == 1 {
		return tensors[0].Clone()
	}

	dim = tensors[0].resolveDim(dim)
	shape := tensors[0].shape.Clone()
	total := 0
	for _, t := range tensors {
		if len(t.shape) != len(shape) {
			panic(fmt.Sprintf("cat: rank mismatch %d vs %d", len(t.shape), len(shape)))
		}
		for d := range shape {
			if d != dim && t.shape[d] != shape[d] {
				panic(fmt.Sprintf("cat: shape mismatch at dimension %d: %v vs %v", d, t.shape, shape))
			}
		}
		total += t.shape[dim]
	}
	shape[dim] = total

	out := Zeros[T](shape)
	off := 0
	for _, t := range tensors {
		out.Narrow(dim, off, t.shape[dim]).copyFrom(t)
		off += t.shape[dim]
	}
	return out
}

// PadEnd returns a fresh tensor extended by count positions at the end of
// the specified dimension, with new positions set to fill. The input
// tensor is never modified.
//
// Example:
//
//	x := tensor.Zeros[int32](tensor.Shape{2, 10})
//	y := tensor.PadEnd(x, 1, 2, int32(-100)) // Shape: [2, 12]
func PadEnd[T DType](t *Tensor[T], dim, count int, fill T) *Tensor[T] {
	dim = t.resolveDim(dim)
	if count < 0 {
		panic(fmt.Sprintf("pad: count must be non-negative, got %d", count))
	}
	if count == 0 {
		return t.Clone()
	}
	shape := t.shape.Clone()
	shape[dim] += count
	out := Full(shape, fill)
	out.Narrow(dim, 0, t.shape[dim]).copyFrom(t)
	return out
}

// resolveDim normalizes negative dimension indices and bounds-checks.
func (t *Tensor[T]) resolveDim(dim int) int {
	if dim < 0 {
		dim += len(t.shape)
	}
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("dimension %d out of range for %d-D tensor", dim, len(t.shape)))
	}
	return dim
}
