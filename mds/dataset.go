package mds

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"
)

// Dataset is an assembled run directory: dimensions, coordinate variables
// and data variables, each tagged with its ordered dimension names.
//
// Variables backed by memory-mapped files keep their mappings until Close.
type Dataset struct {
	dir    string
	dims   map[string]int
	coords map[string]*Variable
	vars   map[string]*Variable

	iters   []int64
	times   []time.Time
	elapsed []time.Duration

	closed bool
}

func newDataset(dir string) *Dataset {
	return &Dataset{
		dir:    dir,
		dims:   make(map[string]int),
		coords: make(map[string]*Variable),
		vars:   make(map[string]*Variable),
	}
}

// Dir returns the run directory.
func (d *Dataset) Dir() string {
	return d.dir
}

// Dims returns a copy of the dimension sizes.
func (d *Dataset) Dims() map[string]int {
	out := make(map[string]int, len(d.dims))
	for k, v := range d.dims {
		out[k] = v
	}
	return out
}

// Dim returns the size of the named dimension.
func (d *Dataset) Dim(name string) (int, bool) {
	n, ok := d.dims[name]
	return n, ok
}

// DimNames returns the dimension names, sorted.
func (d *Dataset) DimNames() []string {
	return sortedKeys(d.dims)
}

// CoordNames returns the coordinate variable names, sorted.
func (d *Dataset) CoordNames() []string {
	return sortedKeys(d.coords)
}

// VarNames returns the data variable names, sorted.
func (d *Dataset) VarNames() []string {
	return sortedKeys(d.vars)
}

// Coord returns the named coordinate variable, or nil.
func (d *Dataset) Coord(name string) *Variable {
	return d.coords[name]
}

// Var returns the named data variable, or nil.
func (d *Dataset) Var(name string) *Variable {
	return d.vars[name]
}

// Has reports whether a coordinate or data variable has the name.
func (d *Dataset) Has(name string) bool {
	return d.coords[name] != nil || d.vars[name] != nil
}

// Variable returns the named coordinate or data variable.
func (d *Dataset) Variable(name string) (*Variable, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if v := d.coords[name]; v != nil {
		return v, nil
	}
	if v := d.vars[name]; v != nil {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Iterations returns the iterations along the time dimension.
func (d *Dataset) Iterations() []int64 {
	return slices.Clone(d.iters)
}

// Times returns the calendar time of each iteration, or nil when no
// reference date was given.
func (d *Dataset) Times() []time.Time {
	return slices.Clone(d.times)
}

// Elapsed returns the model time of each iteration, or nil when no time
// step was given.
func (d *Dataset) Elapsed() []time.Duration {
	return slices.Clone(d.elapsed)
}

// Close releases every memory mapping held by the dataset's variables.
func (d *Dataset) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	var errs []error
	for _, m := range []map[string]*Variable{d.coords, d.vars} {
		for _, v := range m {
			if err := v.close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// addDim registers a dimension. Registering an existing dimension with a
// different size is an error.
func (d *Dataset) addDim(name string, size int) error {
	if n, ok := d.dims[name]; ok && n != size {
		return fmt.Errorf("dimension %s has size %d, cannot redefine as %d", name, n, size)
	}
	d.dims[name] = size
	return nil
}

// addVar registers v as a coordinate or data variable, taking ownership of
// its slabs.
func (d *Dataset) addVar(v *Variable, coord bool) error {
	if d.Has(v.name) {
		v.close()
		return fmt.Errorf("variable %s defined twice", v.name)
	}
	if coord {
		d.coords[v.name] = v
	} else {
		d.vars[v.name] = v
	}
	return nil
}

// renameDim relabels dimension old as name in the dimension table and in
// every variable.
func (d *Dataset) renameDim(old, name string) {
	d.dims[name] = d.dims[old]
	delete(d.dims, old)
	for _, m := range []map[string]*Variable{d.coords, d.vars} {
		for _, v := range m {
			for i, dim := range v.dims {
				if dim == old {
					v.dims[i] = name
				}
			}
		}
	}
}

// promote moves a data variable to the coordinates.
func (d *Dataset) promote(name string) {
	if v, ok := d.vars[name]; ok {
		delete(d.vars, name)
		d.coords[name] = v
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
