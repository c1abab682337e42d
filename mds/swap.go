package mds

import (
	"slices"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-mds/internal/diagnostics"
	"github.com/robert-malhotra/go-mds/internal/raw"
)

// swapDims relabels each index dimension with its coordinate variable's
// name, where that variable is loaded and one-dimensional along it.
// Rectilinear two-dimensional horizontal coordinates are first reduced to
// one dimension; curvilinear ones are left unswapped.
func (a *assembler) swapDims() error {
	if !a.opt.swapDims {
		return nil
	}

	type pair struct{ dim, coord string }
	var pairs []pair
	for _, ax := range slices.Concat(horizontalAxes, verticalAxes) {
		pairs = append(pairs, pair{ax.name, ax.coord})
	}
	for _, name := range sortedKeys(a.layers) {
		for _, suffix := range diagnostics.LayerSuffixes {
			pairs = append(pairs, pair{diagnostics.LayerDimName(name, suffix), LayerCoordName(name, suffix)})
		}
	}

	for _, p := range pairs {
		if _, ok := a.ds.dims[p.dim]; !ok {
			continue
		}
		if _, taken := a.ds.dims[p.coord]; taken {
			a.log.Info("dimension already exists, not swapping", zap.String("dim", p.dim), zap.String("coord", p.coord))
			continue
		}
		v := a.ds.vars[p.coord]
		if v == nil {
			v = a.ds.coords[p.coord]
		}
		if v == nil {
			a.log.Debug("coordinate not loaded, not swapping", zap.String("dim", p.dim), zap.String("coord", p.coord))
			continue
		}

		ok, err := toAxis(v, p.dim)
		if err != nil {
			return err
		}
		if !ok {
			a.log.Info("coordinate is not one-dimensional along dim, not swapping",
				zap.String("dim", p.dim), zap.String("coord", p.coord), zap.Strings("dims", v.dims))
			continue
		}
		a.ds.renameDim(p.dim, p.coord)
		a.ds.promote(p.coord)
	}
	return nil
}

// toAxis reduces v to a one-dimensional variable along dim. A 2-D variable
// is reduced only when it varies along dim alone.
func toAxis(v *Variable, dim string) (bool, error) {
	if v.stacked {
		return false, nil
	}
	if len(v.dims) == 1 {
		return v.dims[0] == dim, nil
	}
	p := slices.Index(v.dims, dim)
	if len(v.dims) != 2 || p < 0 {
		return false, nil
	}
	q := 1 - p

	slab := v.slabs[0]
	shape := slab.Shape()
	values := slab.Float64s()
	for r := 0; r < shape[0]; r++ {
		for c := 0; c < shape[1]; c++ {
			ref := [2]int{r, c}
			ref[q] = 0
			if values[r*shape[1]+c] != values[ref[0]*shape[1]+ref[1]] {
				return false, nil
			}
		}
	}

	line, err := slab.Index(q, 0)
	if err != nil {
		return false, err
	}
	if err := v.replaceSlabs([]*raw.Array{line}); err != nil {
		return false, err
	}
	v.dims = []string{dim}
	return true, nil
}
