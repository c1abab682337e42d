package mds

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-mds/internal/mdserr"
	"github.com/robert-malhotra/go-mds/internal/meta"
	"github.com/robert-malhotra/go-mds/internal/raw"
)

// readShape takes nx and ny from the XC metadata and nz from RC, falling
// back to hFacC and then to a single level. Only metadata is read, so the
// shape is known even when the grid is not loaded.
func (a *assembler) readShape() error {
	h, err := meta.ParseFile(filepath.Join(a.dir, "XC"+meta.Ext))
	if err != nil {
		return err
	}
	shape := h.Shape()
	if len(shape) < 2 {
		return &FormatError{Path: filepath.Join(a.dir, "XC"+meta.Ext),
			Err: fmt.Errorf("XC has shape %v, need at least two dimensions", shape)}
	}
	a.ny, a.nx = shape[len(shape)-2], shape[len(shape)-1]

	a.nz = 1
	if h, err := meta.ParseFile(filepath.Join(a.dir, "RC"+meta.Ext)); err == nil {
		a.nz = h.NumElements()
	} else if h, err := meta.ParseFile(filepath.Join(a.dir, "hFacC"+meta.Ext)); err == nil && len(h.Shape()) == 3 {
		a.nz = h.Shape()[0]
	} else {
		a.log.Debug("no vertical grid metadata, assuming one level")
	}
	a.log.Debug("grid shape", zap.Int("nx", a.nx), zap.Int("ny", a.ny), zap.Int("nz", a.nz))

	sizes := map[string]int{
		"i": a.nx, "i_g": a.nx,
		"j": a.ny, "j_g": a.ny,
		"k": a.nz, "k_u": a.nz, "k_l": a.nz, "k_p1": a.nz + 1,
	}
	for _, ax := range slices.Concat(horizontalAxes, verticalAxes) {
		at := cloneAttrs(ax.attrs)
		at[AttrSwapDim] = ax.coord
		if err := a.addIndex(ax.name, sizes[ax.name], at); err != nil {
			return err
		}
	}
	return nil
}

// readGrid reads the grid variables. Files shared by several variables are
// read once; each variable holds its own view.
func (a *assembler) readGrid() error {
	if !a.opt.grid {
		return nil
	}

	files := make(map[string]*raw.Array)
	defer func() {
		for _, arr := range files {
			if arr != nil {
				arr.Close()
			}
		}
	}()

	for _, gv := range gridVars {
		arr, ok := files[gv.file]
		if !ok {
			base := filepath.Join(a.dir, gv.file)
			fields, err := readFields(base, a.readOpts(nil))
			if errors.Is(err, ErrMissingFile) {
				a.log.Debug("grid file missing", zap.String("var", gv.name), zap.String("file", gv.file))
				files[gv.file] = nil
				continue
			}
			if err != nil {
				return err
			}
			if len(fields) != 1 {
				closeFields(fields)
				return mdserr.IO(base+DataExt, fmt.Errorf("%w: grid file has %d records", ErrMultiRecord, len(fields)))
			}
			arr = fields[0].Array
			files[gv.file] = arr
		}
		if arr == nil {
			continue
		}

		slab, dims, err := a.gridSlab(gv, arr)
		if err != nil {
			return mdserr.IO(filepath.Join(a.dir, gv.file+DataExt), err)
		}
		if err := a.ds.addVar(&Variable{
			name:  gv.name,
			kind:  GridVar,
			dims:  slices.Clone(dims),
			attrs: cloneAttrs(gv.attrs),
			slabs: []*raw.Array{slab},
		}, false); err != nil {
			return err
		}
	}
	return nil
}

// gridSlab shapes arr to the variable's dimensions.
func (a *assembler) gridSlab(gv gridVar, arr *raw.Array) (*raw.Array, []string, error) {
	dims := gv.dims
	shape := a.shapeOf(dims)
	n := arr.Len()
	if gv.alt != nil && n != product(shape) && n == product(a.shapeOf(gv.alt)) {
		dims = gv.alt
		shape = a.shapeOf(dims)
	}

	if len(shape) == 1 && n > shape[0] {
		flat, err := arr.Reshape(n)
		if err != nil {
			return nil, nil, err
		}
		defer flat.Close()
		if gv.from+shape[0] > n {
			return nil, nil, fmt.Errorf("%w: %s needs %d points from offset %d, file has %d",
				ErrSizeMismatch, gv.name, shape[0], gv.from, n)
		}
		slab, err := flat.Slice(gv.from, gv.from+shape[0])
		return slab, dims, err
	}

	slab, err := arr.Reshape(shape...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s has %d points, dims %v need %d",
			ErrSizeMismatch, gv.name, n, dims, product(shape))
	}
	return slab, dims, nil
}

// shapeOf returns the registered size of each dimension, or -1 for an
// unknown one.
func (a *assembler) shapeOf(dims []string) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		n, ok := a.ds.dims[d]
		if !ok {
			n = -1
		}
		shape[i] = n
	}
	return shape
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
