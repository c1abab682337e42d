package mds

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-mds/internal/diagnostics"
	"github.com/robert-malhotra/go-mds/internal/raw"
)

// Open assembles the run directory dir into a Dataset.
//
// By default every iteration found in dir is loaded, field prefixes are
// inferred from the files present at the first iteration, the grid is read
// and payloads are memory mapped as big-endian. On error every mapping made
// so far is released and no Dataset is returned.
func Open(dir string, opts ...Option) (*Dataset, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	a := &assembler{
		dir: dir,
		opt: o,
		log: o.logger.With(zap.String("dir", dir)),
		ds:  newDataset(dir),
	}

	start := time.Now()
	if err := a.run(); err != nil {
		a.ds.Close()
		return nil, err
	}
	a.log.Debug("dataset assembled",
		zap.Int("dims", len(a.ds.dims)),
		zap.Int("coords", len(a.ds.coords)),
		zap.Int("vars", len(a.ds.vars)),
		zap.Int64("live_mappings", raw.LiveMappings()),
		zap.Duration("elapsed", time.Since(start)))
	return a.ds, nil
}

// assembler holds the state of one Open call.
type assembler struct {
	dir string
	opt *options
	log *zap.Logger
	ds  *Dataset

	// found maps each iteration present on disk to its prefixes.
	found    map[int64][]string
	iters    []int64
	prefixes []string

	nx, ny, nz int
	layers     map[string]int
	catalogue  diagnostics.Catalogue
}

func (a *assembler) run() error {
	phases := []struct {
		name string
		fn   func() error
	}{
		{"discover", a.discover},
		{"prefixes", a.resolvePrefixes},
		{"shape", a.readShape},
		{"grid", a.readGrid},
		{"layers", a.readLayers},
		{"diagnostics", a.readDiagnostics},
		{"fields", a.readFieldVars},
		{"time", a.buildTime},
		{"swap dims", a.swapDims},
	}
	for _, p := range phases {
		a.log.Debug("phase", zap.String("phase", p.name))
		if err := p.fn(); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return nil
}

// addIndex registers a dimension and its integer index coordinate.
func (a *assembler) addIndex(name string, size int, at attrs) error {
	if err := a.ds.addDim(name, size); err != nil {
		return err
	}
	if a.ds.coords[name] != nil {
		return nil
	}
	return a.ds.addVar(&Variable{
		name:  name,
		kind:  IndexCoord,
		dims:  []string{name},
		attrs: cloneAttrs(at),
		slabs: []*raw.Array{raw.Range(size)},
	}, true)
}

// readOpts returns the options for reading one file at iter.
func (a *assembler) readOpts(iter *int64) *options {
	o := *a.opt
	o.iter = iter
	o.shape = nil
	o.typ = 0
	return &o
}

func cloneAttrs(at attrs) attrs {
	out := make(attrs, len(at))
	for k, v := range at {
		out[k] = v
	}
	return out
}

func zapPath(p string) zap.Field {
	return zap.String("path", p)
}

func zapShape(shape []int) zap.Field {
	return zap.Ints("shape", shape)
}
