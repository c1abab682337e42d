package mds

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-mds/internal/diagnostics"
	"github.com/robert-malhotra/go-mds/internal/mdserr"
	"github.com/robert-malhotra/go-mds/internal/raw"
)

// TimeDim is the leading dimension of output fields.
const TimeDim = "time"

func (a *assembler) readDiagnostics() error {
	path := a.opt.diagFile
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.dir, path)
	}
	cat, err := diagnostics.ParseFile(path, a.layers)
	if errors.Is(err, ErrMissingFile) {
		a.log.Debug("no diagnostics catalogue", zapPath(path))
		return nil
	}
	if err != nil {
		return err
	}
	a.catalogue = cat
	a.log.Debug("diagnostics catalogue", zapPath(path), zap.Int("entries", len(cat)))
	return nil
}

// readFieldVars reads every prefix at every iteration and stacks
// same-named records along time.
func (a *assembler) readFieldVars() error {
	if len(a.iters) == 0 || len(a.prefixes) == 0 {
		return nil
	}
	if err := a.ds.addDim(TimeDim, len(a.iters)); err != nil {
		return err
	}
	for _, prefix := range a.prefixes {
		if err := a.readPrefix(prefix); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) readPrefix(prefix string) error {
	base := filepath.Join(a.dir, prefix)
	var names []string
	stacks := make(map[string]*Variable)

	for n, iter := range a.iters {
		it := iter
		fields, err := readFields(base, a.readOpts(&it))
		if err != nil {
			return err
		}
		path := FileBase(base, &it) + DataExt

		if n == 0 {
			for i, f := range fields {
				v := &Variable{name: f.Name, kind: FieldVar, stacked: true, slabs: []*raw.Array{f.Array}}
				if err := a.ds.addVar(v, false); err != nil {
					closeFields(fields[i+1:])
					return fmt.Errorf("%s: %w", path, err)
				}
				names = append(names, f.Name)
				stacks[f.Name] = v
			}
			continue
		}

		if err := sameRecords(names, fields); err != nil {
			closeFields(fields)
			return mdserr.IO(path, fmt.Errorf("iteration %d: %w", iter, err))
		}
		for _, f := range fields {
			v := stacks[f.Name]
			if want, got := v.slabs[0].Shape(), f.Array.Shape(); !slices.Equal(want, got) {
				closeFields(fields)
				return mdserr.IO(path, fmt.Errorf("%w: %s has shape %v, was %v at iteration %d",
					ErrSizeMismatch, f.Name, got, want, a.iters[0]))
			}
		}
		for _, f := range fields {
			v := stacks[f.Name]
			v.slabs = append(v.slabs, f.Array)
		}
	}

	for _, name := range names {
		if err := a.assignDims(stacks[name]); err != nil {
			return err
		}
	}
	a.log.Debug("stacked prefix", zap.String("prefix", prefix), zap.Strings("vars", names))
	return nil
}

func sameRecords(names []string, fields []Field) error {
	got := make([]string, len(fields))
	for i, f := range fields {
		got[i] = f.Name
	}
	for _, n := range names {
		if !slices.Contains(got, n) {
			return fmt.Errorf("record %s missing", n)
		}
	}
	for _, n := range got {
		if !slices.Contains(names, n) {
			return fmt.Errorf("unexpected record %s", n)
		}
	}
	return nil
}

// assignDims names the dimensions of a stacked field: from the state
// variable table, then the diagnostics catalogue, then inferred from the
// shape. Table dims that do not fit the data fall back to inferred ones.
func (a *assembler) assignDims(v *Variable) error {
	shape := v.slabs[0].Shape()

	var dims []string
	var at attrs
	var source string
	if sv, ok := stateVars[v.name]; ok {
		dims, at, source = sv.dims, sv.attrs, "state"
	} else if spec, ok := a.catalogue[v.name]; ok {
		dims, at, source = spec.Dims, spec.Attrs, "diagnostics"
	}

	if dims != nil {
		want := a.shapeOf(dims)
		if slices.Contains(want, -1) || product(want) != product(shape) {
			a.log.Warn("dims do not fit data, inferring from shape",
				zap.String("var", v.name), zap.String("source", source),
				zap.Strings("dims", dims), zapShape(shape))
			dims = nil
		} else if !slices.Equal(want, shape) {
			if err := reshapeSlabs(v, want); err != nil {
				return err
			}
		}
	}
	if dims == nil {
		var err error
		if dims, err = a.inferDims(v.name, shape); err != nil {
			return err
		}
	}

	v.dims = append([]string{TimeDim}, dims...)
	v.attrs = cloneAttrs(at)
	return nil
}

func reshapeSlabs(v *Variable, shape []int) error {
	slabs := make([]*raw.Array, 0, len(v.slabs))
	for _, s := range v.slabs {
		r, err := s.Reshape(shape...)
		if err != nil {
			for _, done := range slabs {
				done.Close()
			}
			return err
		}
		slabs = append(slabs, r)
	}
	return v.replaceSlabs(slabs)
}

// inferDims guesses dimensions from a shape: full 3-D and 2-D horizontal
// fields, vertical profiles, and otherwise <name>_dim<n> axes, keeping a
// trailing horizontal j, i.
func (a *assembler) inferDims(name string, shape []int) ([]string, error) {
	switch {
	case slices.Equal(shape, []int{a.nz, a.ny, a.nx}):
		return []string{"k", "j", "i"}, nil
	case slices.Equal(shape, []int{a.ny, a.nx}):
		return []string{"j", "i"}, nil
	case len(shape) == 1 && shape[0] == a.nz:
		return []string{"k"}, nil
	case len(shape) == 1 && shape[0] == a.nz+1:
		return []string{"k_p1"}, nil
	}
	var tail []string
	if r := len(shape); r > 2 && shape[r-2] == a.ny && shape[r-1] == a.nx {
		shape, tail = shape[:r-2], []string{"j", "i"}
	}
	dims := make([]string, len(shape), len(shape)+len(tail))
	for i, n := range shape {
		dims[i] = fmt.Sprintf("%s_dim%d", name, i)
		if err := a.ds.addDim(dims[i], n); err != nil {
			return nil, err
		}
	}
	return append(dims, tail...), nil
}
