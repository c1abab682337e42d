// Package raw reads headerless MDS payload files into typed arrays.
//
// An Array is either owned (the bytes were copied into memory and converted
// to host byte order) or a view into a read-only memory mapping of the file.
// Views share their Mapping by reference count: every Array derived from a
// view (records, slices, reshapes) takes a reference, and the file is
// unmapped when the last one is closed. Closing an owned Array is a no-op.
//
// A mapped Array must not be written to, and its bytes must not be used
// after Close.
package raw

import (
	"encoding/binary"
	"fmt"

	"github.com/robert-malhotra/go-mds/internal/dtype"
)

// Array is an N-dimensional numeric buffer in row-major order.
type Array struct {
	typ     dtype.Type
	order   binary.ByteOrder
	shape   []int
	data    []byte
	mapping *Mapping
	closed  bool
}

// New wraps data as an owned array. len(data) must equal the element size
// times the product of shape.
func New(t dtype.Type, order binary.ByteOrder, shape []int, data []byte) (*Array, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid element type %v", t)
	}
	if want := ByteSize(t, shape); int64(len(data)) != want {
		return nil, fmt.Errorf("data has %d bytes, shape %v of %v needs %d", len(data), shape, t, want)
	}
	return &Array{typ: t, order: order, shape: cloneShape(shape), data: data}, nil
}

// FromFloat64s builds an owned array of type t holding values.
func FromFloat64s(t dtype.Type, shape []int, values []float64) (*Array, error) {
	data, err := dtype.EncodeFloat64(t, binary.NativeEndian, values)
	if err != nil {
		return nil, err
	}
	return New(t, binary.NativeEndian, shape, data)
}

// FromInt64s builds an owned one-dimensional int64 array.
func FromInt64s(values []int64) *Array {
	data, _ := dtype.EncodeInt64(dtype.Int64, binary.NativeEndian, values)
	return &Array{typ: dtype.Int64, order: binary.NativeEndian, shape: []int{len(values)}, data: data}
}

// Range builds an owned int64 array holding 0..n-1.
func Range(n int) *Array {
	values := make([]int64, n)
	for i := range values {
		values[i] = int64(i)
	}
	return FromInt64s(values)
}

// ByteSize returns the payload size of an array of type t and the given shape.
func ByteSize(t dtype.Type, shape []int) int64 {
	n := int64(t.Size())
	for _, s := range shape {
		n *= int64(s)
	}
	return n
}

// Type returns the element type.
func (a *Array) Type() dtype.Type { return a.typ }

// Order returns the byte order the bytes are stored in.
func (a *Array) Order() binary.ByteOrder { return a.order }

// Shape returns a copy of the dimensions.
func (a *Array) Shape() []int { return cloneShape(a.shape) }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Len returns the number of elements.
func (a *Array) Len() int {
	n := 1
	for _, s := range a.shape {
		n *= s
	}
	return n
}

// Mapped reports whether the array is a view of a memory-mapped file.
func (a *Array) Mapped() bool { return a.mapping != nil }

// Bytes returns the underlying bytes in Order(). The slice must not be
// modified when the array is mapped.
func (a *Array) Bytes() []byte { return a.data }

// Float64At decodes element i (flat, row-major) as float64.
func (a *Array) Float64At(i int) float64 {
	return dtype.Float64At(a.typ, a.order, a.data, i)
}

// Int64At decodes element i (flat, row-major) as int64.
func (a *Array) Int64At(i int) int64 {
	return dtype.Int64At(a.typ, a.order, a.data, i)
}

// Float64s decodes every element into a new slice.
func (a *Array) Float64s() []float64 {
	out := make([]float64, a.Len())
	_ = dtype.DecodeFloat64(a.typ, a.order, a.data, out)
	return out
}

// Int64s decodes every element into a new slice.
func (a *Array) Int64s() []int64 {
	out := make([]int64, a.Len())
	for i := range out {
		out[i] = a.Int64At(i)
	}
	return out
}

// Encode returns a copy of the bytes in the requested order. Encoding with
// the order the file was written in reproduces the file exactly.
func (a *Array) Encode(order binary.ByteOrder) []byte {
	out := make([]byte, len(a.data))
	copy(out, a.data)
	if !dtype.SameOrder(order, a.order) {
		dtype.Swap(a.typ, out)
	}
	return out
}

// Slice returns the sub-array [lo, hi) along the leading axis. It shares
// memory with a.
func (a *Array) Slice(lo, hi int) (*Array, error) {
	if len(a.shape) == 0 {
		return nil, fmt.Errorf("cannot slice a scalar")
	}
	if lo < 0 || hi > a.shape[0] || lo > hi {
		return nil, fmt.Errorf("slice [%d:%d] out of range for leading axis of length %d", lo, hi, a.shape[0])
	}
	stride := a.Len() / max(a.shape[0], 1) * a.typ.Size()
	shape := cloneShape(a.shape)
	shape[0] = hi - lo
	return a.derive(shape, a.data[lo*stride:hi*stride]), nil
}

// Record returns entry i along the leading axis, with that axis removed.
func (a *Array) Record(i int) (*Array, error) {
	s, err := a.Slice(i, i+1)
	if err != nil {
		return nil, err
	}
	s.shape = s.shape[1:]
	return s, nil
}

// Index returns entry idx along axis, with that axis removed. Axis 0 is a
// view sharing memory with a; any other axis is gathered into an owned copy
// in the same byte order.
func (a *Array) Index(axis, idx int) (*Array, error) {
	if axis < 0 || axis >= len(a.shape) {
		return nil, fmt.Errorf("axis %d out of range for rank %d", axis, len(a.shape))
	}
	if idx < 0 || idx >= a.shape[axis] {
		return nil, fmt.Errorf("index %d out of range for axis %d of length %d", idx, axis, a.shape[axis])
	}
	if axis == 0 {
		return a.Record(idx)
	}

	outer := 1
	for _, s := range a.shape[:axis] {
		outer *= s
	}
	inner := a.typ.Size()
	for _, s := range a.shape[axis+1:] {
		inner *= s
	}
	step := a.shape[axis] * inner

	data := make([]byte, 0, outer*inner)
	for o := 0; o < outer; o++ {
		start := o*step + idx*inner
		data = append(data, a.data[start:start+inner]...)
	}
	shape := append(cloneShape(a.shape[:axis]), a.shape[axis+1:]...)
	return &Array{typ: a.typ, order: a.order, shape: shape, data: data}, nil
}

// Reshape returns a view with a new shape holding the same number of elements.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	if ByteSize(a.typ, shape) != int64(len(a.data)) {
		return nil, fmt.Errorf("cannot reshape %v into %v", a.shape, shape)
	}
	return a.derive(cloneShape(shape), a.data), nil
}

// Squeeze returns a view with every length-one axis removed.
func (a *Array) Squeeze() *Array {
	shape := make([]int, 0, len(a.shape))
	for _, s := range a.shape {
		if s != 1 {
			shape = append(shape, s)
		}
	}
	return a.derive(shape, a.data)
}

// Close releases the array's reference on its mapping. It is safe to call
// more than once.
func (a *Array) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	m := a.mapping
	a.data = nil
	if m == nil {
		return nil
	}
	return m.release()
}

func (a *Array) String() string {
	kind := "owned"
	if a.Mapped() {
		kind = "mapped"
	}
	return fmt.Sprintf("Array(%v %v, %s-endian, %s)", a.typ, a.shape, dtype.OrderName(a.order), kind)
}

func (a *Array) derive(shape []int, data []byte) *Array {
	if a.mapping != nil {
		a.mapping.acquire()
	}
	return &Array{typ: a.typ, order: a.order, shape: shape, data: data, mapping: a.mapping}
}

func cloneShape(shape []int) []int {
	out := make([]int, len(shape))
	copy(out, shape)
	return out
}
