package mds

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-mds/internal/diagnostics"
	"github.com/robert-malhotra/go-mds/internal/dtype"
	"github.com/robert-malhotra/go-mds/internal/meta"
	"github.com/robert-malhotra/go-mds/internal/raw"
)

// layersPrefix starts the name of a layers bounds grid file.
const layersPrefix = "layers"

// LayerCoordName returns the coordinate variable name for one axis of a
// layers coordinate, e.g. layer_1RHO_bounds.
func LayerCoordName(layer, suffix string) string {
	return "layer_" + layer + "_" + suffix
}

// DetectLayers finds layers<name> grid files in dir and returns each
// layer's number of bounds.
func DetectLayers(dir string) (map[string]int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, layersPrefix+"*"+meta.Ext))
	if err != nil {
		return nil, err
	}
	layers := make(map[string]int)
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), layersPrefix), meta.Ext)
		if name == "" || strings.Contains(name, ".") {
			continue
		}
		h, err := meta.ParseFile(m)
		if err != nil {
			return nil, err
		}
		layers[name] = h.NumElements()
	}
	return layers, nil
}

// readLayers registers the bounds, center and interface axes of every
// layers coordinate, and their coordinate variables when the grid is read
// and the bounds file exists.
func (a *assembler) readLayers() error {
	layers, err := DetectLayers(a.dir)
	if err != nil {
		return err
	}
	for name, n := range a.opt.layers {
		if found, ok := layers[name]; ok && found != n {
			a.log.Warn("declared layers disagree with grid file",
				zap.String("layer", name), zap.Int("declared", n), zap.Int("file", found))
		}
		layers[name] = n
	}
	a.layers = layers

	for _, name := range sortedKeys(layers) {
		n := layers[name]
		if n < 3 {
			return fmt.Errorf("%w: layers %s has %d bounds, need at least 3", ErrInvalidOption, name, n)
		}
		for offset, suffix := range diagnostics.LayerSuffixes {
			dim := diagnostics.LayerDimName(name, suffix)
			at := attrs{
				AttrStandardName: "layer_" + suffix + "_index",
				AttrLongName:     fmt.Sprintf("index of layer %s %s", name, suffix),
				AttrSwapDim:      LayerCoordName(name, suffix),
			}
			if err := a.addIndex(dim, n-offset, at); err != nil {
				return fmt.Errorf("layers %s: %w", name, err)
			}
		}
		if a.opt.grid {
			if err := a.readLayerCoords(name, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *assembler) readLayerCoords(name string, n int) error {
	base := filepath.Join(a.dir, layersPrefix+name)
	fields, err := readFields(base, a.readOpts(nil))
	if errors.Is(err, ErrMissingFile) {
		a.log.Debug("no layers bounds file", zap.String("layer", name))
		return nil
	}
	if err != nil {
		return err
	}
	arr := fields[0].Array
	defer closeFields(fields)

	if arr.Len() != n {
		return &IOError{Path: base + DataExt,
			Err: fmt.Errorf("%w: %d bounds declared, file has %d", ErrSizeMismatch, n, arr.Len())}
	}
	bounds, err := arr.Reshape(n)
	if err != nil {
		return err
	}
	interior, err := bounds.Slice(1, n-1)
	if err != nil {
		bounds.Close()
		return err
	}

	values := bounds.Float64s()
	mid := make([]float64, n-1)
	for i := range mid {
		mid[i] = (values[i] + values[i+1]) / 2
	}
	center, err := raw.FromFloat64s(dtype.Float64, []int{n - 1}, mid)
	if err != nil {
		bounds.Close()
		interior.Close()
		return err
	}

	slabs := []*raw.Array{bounds, center, interior}
	for i, slab := range slabs {
		suffix := diagnostics.LayerSuffixes[i]
		v := &Variable{
			name: LayerCoordName(name, suffix),
			kind: LayerCoord,
			dims: []string{diagnostics.LayerDimName(name, suffix)},
			attrs: attrs{
				AttrStandardName: "ocean_layer_coordinate_" + name + "_" + suffix,
				AttrLongName:     fmt.Sprintf("Layer %s %s", name, suffix),
			},
			slabs: []*raw.Array{slab},
		}
		if err := a.ds.addVar(v, true); err != nil {
			for _, rest := range slabs[i+1:] {
				rest.Close()
			}
			return err
		}
	}
	return nil
}
