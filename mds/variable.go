package mds

import (
	"fmt"
	"slices"
	"sort"

	"github.com/robert-malhotra/go-mds/internal/raw"
)

// Kind classifies a variable by where it came from.
type Kind int

const (
	// IndexCoord is the integer index of a dimension.
	IndexCoord Kind = iota
	// GridVar is grid geometry read without iteration suffix.
	GridVar
	// LayerCoord is a layers bounds, center or interface coordinate.
	LayerCoord
	// FieldVar is model output stacked along time.
	FieldVar
	// TimeVar is the iter or time coordinate.
	TimeVar
)

func (k Kind) String() string {
	switch k {
	case IndexCoord:
		return "index"
	case GridVar:
		return "grid"
	case LayerCoord:
		return "layer"
	case FieldVar:
		return "field"
	case TimeVar:
		return "time"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Variable is a named array with ordered dimension names. Output fields
// keep one slab per iteration; the leading time dimension runs across the
// slabs, so stacking copies nothing.
type Variable struct {
	name    string
	kind    Kind
	dims    []string
	attrs   map[string]string
	slabs   []*raw.Array
	stacked bool
	closed  bool
}

// Name returns the variable name.
func (v *Variable) Name() string {
	return v.name
}

// Kind returns the variable kind.
func (v *Variable) Kind() Kind {
	return v.kind
}

// Dims returns the dimension names, outermost first.
func (v *Variable) Dims() []string {
	return slices.Clone(v.dims)
}

// Shape returns the extent of each dimension.
func (v *Variable) Shape() []int {
	if len(v.slabs) == 0 {
		return nil
	}
	shape := v.slabs[0].Shape()
	if v.stacked {
		return append([]int{len(v.slabs)}, shape...)
	}
	return shape
}

// Rank returns the number of dimensions.
func (v *Variable) Rank() int {
	return len(v.dims)
}

// NumElements returns the total number of elements.
func (v *Variable) NumElements() int {
	n := 0
	for _, s := range v.slabs {
		n += s.Len()
	}
	return n
}

// Type returns the element type.
func (v *Variable) Type() ElementType {
	if len(v.slabs) == 0 {
		return 0
	}
	return v.slabs[0].Type()
}

// Mapped reports whether any of the variable's data is memory mapped.
func (v *Variable) Mapped() bool {
	for _, s := range v.slabs {
		if s.Mapped() {
			return true
		}
	}
	return false
}

// NumSlabs returns the number of slabs: the time length for output fields
// and one otherwise.
func (v *Variable) NumSlabs() int {
	return len(v.slabs)
}

// Slab returns slab i. For output fields that is the field at the i-th
// iteration. The array belongs to the variable and must not be closed.
func (v *Variable) Slab(i int) (*Array, error) {
	if v.closed {
		return nil, ErrClosed
	}
	if i < 0 || i >= len(v.slabs) {
		return nil, fmt.Errorf("slab %d out of range for %s with %d slabs", i, v.name, len(v.slabs))
	}
	return v.slabs[i], nil
}

// Attrs returns the attribute names, sorted.
func (v *Variable) Attrs() []string {
	names := make([]string, 0, len(v.attrs))
	for k := range v.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Attr returns the named attribute.
func (v *Variable) Attr(name string) (string, bool) {
	val, ok := v.attrs[name]
	return val, ok
}

// ReadFloat64 decodes every element, in row-major order, as float64.
func (v *Variable) ReadFloat64() ([]float64, error) {
	if v.closed {
		return nil, ErrClosed
	}
	out := make([]float64, 0, v.NumElements())
	for _, s := range v.slabs {
		out = append(out, s.Float64s()...)
	}
	return out, nil
}

// ReadInt64 decodes every element, in row-major order, as int64.
func (v *Variable) ReadInt64() ([]int64, error) {
	if v.closed {
		return nil, ErrClosed
	}
	out := make([]int64, 0, v.NumElements())
	for _, s := range v.slabs {
		out = append(out, s.Int64s()...)
	}
	return out, nil
}

// Float64At decodes the element at flat row-major index i.
func (v *Variable) Float64At(i int) (float64, error) {
	if v.closed {
		return 0, ErrClosed
	}
	if i < 0 {
		return 0, fmt.Errorf("negative index %d for %s", i, v.name)
	}
	for _, s := range v.slabs {
		if i < s.Len() {
			return s.Float64At(i), nil
		}
		i -= s.Len()
	}
	return 0, fmt.Errorf("index out of range for %s with %d elements", v.name, v.NumElements())
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s %s%v %v", v.kind, v.name, v.dims, v.Shape())
}

// replaceSlabs swaps in new slabs and closes the old ones.
func (v *Variable) replaceSlabs(slabs []*raw.Array) error {
	old := v.slabs
	v.slabs = slabs
	var firstErr error
	for _, s := range old {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (v *Variable) close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	var firstErr error
	for _, s := range v.slabs {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
