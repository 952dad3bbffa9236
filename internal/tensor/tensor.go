package tensor

import "fmt"

// Tensor is a generic, host-resident tensor with element type T.
//
// A Tensor is a view over a flat backing slice described by shape, strides,
// and an offset. Views created by Narrow or Chunk share the backing slice
// with their parent; Contiguous materializes a view into its own memory.
//
// Example:
//
//	t := tensor.Zeros[int32](tensor.Shape{3, 4})
//	t.Set(7, 1, 2)
//	v := t.At(1, 2) // 7
type Tensor[T DType] struct {
	data   []T
	shape  Shape
	stride []int
	offset int
}

// New creates a Tensor over an existing backing slice.
// The slice is used directly (no copy); it must hold shape.NumElements()
// elements laid out row-major.
func New[T DType](data []T, shape Shape) (*Tensor[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	return &Tensor[T]{
		data:   data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		offset: 0,
	}, nil
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape) (*Tensor[T], error) {
	owned := make([]T, len(data))
	copy(owned, data)
	return New(owned, shape)
}

// Zeros creates a tensor filled with the zero value of T.
func Zeros[T DType](shape Shape) *Tensor[T] {
	t, err := New(make([]T, shape.NumElements()), shape)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return t
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	pads := tensor.Full[int32](tensor.Shape{2, 3}, -100)
func Full[T DType](shape Shape, value T) *Tensor[T] {
	t := Zeros[T](shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor[T]) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's memory strides.
func (t *Tensor[T]) Strides() []int {
	return t.stride
}

// Dims returns the number of dimensions.
func (t *Tensor[T]) Dims() int {
	return len(t.shape)
}

// DType returns the tensor's runtime data type.
func (t *Tensor[T]) DType() DataType {
	var dummy T
	return inferDataType(dummy)
}

// NumElements returns the total number of elements.
func (t *Tensor[T]) NumElements() int {
	return t.shape.NumElements()
}

// IsContiguous reports whether the tensor's elements are laid out row-major
// without gaps. Views created by Narrow or Chunk along an inner dimension
// are generally not contiguous.
func (t *Tensor[T]) IsContiguous() bool {
	expect := t.shape.ComputeStrides()
	for i := range expect {
		if t.shape[i] > 1 && t.stride[i] != expect[i] {
			return false
		}
	}
	return true
}

// Data returns the typed backing slice of a contiguous tensor (zero-copy).
// Panics if the tensor is not contiguous; call Contiguous first.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor[T]) Data() []T {
	if !t.IsContiguous() {
		panic("Data() requires a contiguous tensor; call Contiguous() first")
	}
	return t.data[t.offset : t.offset+t.NumElements()]
}

// Row returns the i-th row of a 2-D contiguous tensor (zero-copy).
func (t *Tensor[T]) Row(i int) []T {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("Row() requires a 2-D tensor, got shape %v", t.shape))
	}
	if !t.IsContiguous() {
		panic("Row() requires a contiguous tensor; call Contiguous() first")
	}
	if i < 0 || i >= t.shape[0] {
		panic(fmt.Sprintf("row %d out of bounds (size %d)", i, t.shape[0]))
	}
	start := t.offset + i*t.stride[0]
	return t.data[start : start+t.shape[1]]
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) At(indices ...int) T {
	return t.data[t.flatIndex(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) Set(value T, indices ...int) {
	t.data[t.flatIndex(indices)] = value
}

func (t *Tensor[T]) flatIndex(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := t.offset
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * t.stride[i]
	}
	return offset
}

// Clone creates a deep, contiguous copy of the tensor.
func (t *Tensor[T]) Clone() *Tensor[T] {
	out := Zeros[T](t.shape)
	out.copyFrom(t)
	return out
}

// Contiguous returns a tensor with row-major layout. If the tensor is
// already contiguous it is returned as-is; otherwise the elements are
// copied into fresh memory (the view's parent is left untouched).
func (t *Tensor[T]) Contiguous() *Tensor[T] {
	if t.IsContiguous() {
		return t
	}
	return t.Clone()
}

// String returns a human-readable representation of the tensor.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.DType(), t.shape)
}

// copyFrom copies every element of src into t. Shapes must match; either
// tensor may be non-contiguous.
func (t *Tensor[T]) copyFrom(src *Tensor[T]) {
	if !t.shape.Equal(src.shape) {
		panic(fmt.Sprintf("copyFrom: shape mismatch %v vs %v", t.shape, src.shape))
	}
	n := t.NumElements()
	if n == 0 {
		return
	}
	idx := make([]int, len(t.shape))
	for {
		dst, from := t.offset, src.offset
		for d, i := range idx {
			dst += i * t.stride[d]
			from += i * src.stride[d]
		}
		t.data[dst] = src.data[from]

		// Advance the index odometer, innermost dimension first.
		d := len(idx) - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < t.shape[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}
