package mds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-mds/internal/diagnostics"
	"github.com/robert-malhotra/go-mds/internal/dtype"
)

// Option configures Open, ReadOne and ReadMany. Options that do not apply
// to a call are ignored by it.
type Option func(*options)

// PrefixInference selects which iterations are scanned when Open infers
// field prefixes.
type PrefixInference int

const (
	// FirstIteration infers prefixes from the files present at the first
	// iteration only. A prefix missing at a later iteration fails Open.
	FirstIteration PrefixInference = iota
	// AllIterations infers prefixes from the union over all iterations.
	// Every inferred prefix must still exist at every iteration, so when
	// Open succeeds the result equals FirstIteration's. A prefix that only
	// appears after the first iteration fails Open here, where
	// FirstIteration skips it.
	AllIterations
)

func (p PrefixInference) String() string {
	switch p {
	case FirstIteration:
		return "first"
	case AllIterations:
		return "all"
	}
	return fmt.Sprintf("PrefixInference(%d)", int(p))
}

type iterMode int

const (
	iterAll iterMode = iota
	iterNone
	iterList
)

type options struct {
	iterMode      iterMode
	iters         []int64
	prefixes      []string
	inference     PrefixInference
	grid          bool
	swapDims      bool
	refDate       *time.Time
	deltaT        time.Duration
	layers        map[string]int
	preserveOrder bool
	diagFile      string
	logger        *zap.Logger

	order binary.ByteOrder
	mmap  bool

	// ReadOne and ReadMany only.
	iter  *int64
	typ   dtype.Type
	shape []int

	errs []error
}

func defaultOptions() *options {
	return &options{
		iterMode:  iterAll,
		inference: FirstIteration,
		grid:      true,
		diagFile:  diagnostics.DefaultFileName,
		logger:    zap.NewNop(),
		order:     binary.BigEndian,
		mmap:      true,
	}
}

func buildOptions(opts []Option) (*options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	if o.iterMode == iterList {
		seen := make(map[int64]bool, len(o.iters))
		for _, it := range o.iters {
			if seen[it] {
				o.errs = append(o.errs, fmt.Errorf("iteration %d requested twice", it))
			}
			seen[it] = true
		}
	}
	if o.refDate != nil && o.deltaT == 0 {
		o.errs = append(o.errs, errors.New("reference date requires a time step"))
	}
	if len(o.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, errors.Join(o.errs...))
	}
	return o, nil
}

func (o *options) invalid(format string, args ...interface{}) {
	o.errs = append(o.errs, fmt.Errorf(format, args...))
}

// WithIterations loads exactly the given iterations. They are sorted
// ascending unless WithPreserveIterationOrder is set. An empty list is the
// same as WithNoIterations.
func WithIterations(iters ...int64) Option {
	return func(o *options) {
		if len(iters) == 0 {
			o.iterMode, o.iters = iterNone, nil
			return
		}
		o.iterMode = iterList
		o.iters = slices.Clone(iters)
	}
}

// WithAllIterations loads every iteration found in the directory. This is
// the default.
func WithAllIterations() Option {
	return func(o *options) {
		o.iterMode, o.iters = iterAll, nil
	}
}

// WithNoIterations loads no output fields, only grid and coordinates.
func WithNoIterations() Option {
	return func(o *options) {
		o.iterMode, o.iters = iterNone, nil
	}
}

// WithPrefixes restricts Open to the named fields instead of inferring them.
func WithPrefixes(prefixes ...string) Option {
	return func(o *options) {
		for _, p := range prefixes {
			if p == "" {
				o.invalid("empty prefix")
				return
			}
		}
		o.prefixes = slices.Clone(prefixes)
	}
}

// WithPrefixInference sets how prefixes are inferred when none are given.
func WithPrefixInference(p PrefixInference) Option {
	return func(o *options) {
		if p != FirstIteration && p != AllIterations {
			o.invalid("unknown prefix inference %v", p)
			return
		}
		o.inference = p
	}
}

// WithGrid enables or disables reading the grid variables. On by default.
func WithGrid(read bool) Option {
	return func(o *options) {
		o.grid = read
	}
}

// WithSwapDims relabels index dimensions with their coordinate variables
// (i becomes XC, k becomes Z, ...). Off by default.
func WithSwapDims(swap bool) Option {
	return func(o *options) {
		o.swapDims = swap
	}
}

// WithByteOrder sets the byte order of the payload files. Big-endian by
// default.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order == nil {
			o.invalid("nil byte order")
			return
		}
		o.order = order
	}
}

// WithMmap selects memory-mapped views (the default) or owned reads.
func WithMmap(mmap bool) Option {
	return func(o *options) {
		o.mmap = mmap
	}
}

// WithReferenceDate decodes the time coordinate as calendar times
// ref + iteration*step. It requires WithTimeStep.
func WithReferenceDate(ref time.Time) Option {
	return func(o *options) {
		o.refDate = &ref
	}
}

// WithTimeStep sets the model time step. Without a reference date the time
// coordinate holds elapsed durations.
func WithTimeStep(step time.Duration) Option {
	return func(o *options) {
		if step <= 0 {
			o.invalid("time step %v must be positive", step)
			return
		}
		o.deltaT = step
	}
}

// WithLayers declares layers coordinates by name and number of bounds, in
// addition to those detected from layers<name> grid files.
func WithLayers(layers map[string]int) Option {
	return func(o *options) {
		if o.layers == nil {
			o.layers = make(map[string]int, len(layers))
		}
		for name, n := range layers {
			if name == "" || n < 3 {
				o.invalid("layers %q needs a name and at least 3 bounds, got %d", name, n)
				continue
			}
			o.layers[name] = n
		}
	}
}

// WithPreserveIterationOrder keeps explicit iterations in the order given
// instead of sorting them.
func WithPreserveIterationOrder(preserve bool) Option {
	return func(o *options) {
		o.preserveOrder = preserve
	}
}

// WithDiagnosticsFile sets the diagnostics catalogue file name, relative to
// the run directory unless absolute.
func WithDiagnosticsFile(name string) Option {
	return func(o *options) {
		o.diagFile = name
	}
}

// WithLogger sets the logger. Open logs nothing by default.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIteration selects the iteration suffix read by ReadOne and ReadMany.
func WithIteration(iter int64) Option {
	return func(o *options) {
		if iter < 0 {
			o.invalid("negative iteration %d", iter)
			return
		}
		o.iter = &iter
	}
}

// WithElementType sets the element type used when a payload has no
// metadata file. It requires WithShape.
func WithElementType(t ElementType) Option {
	return func(o *options) {
		if !t.Valid() {
			o.invalid("invalid element type %v", t)
			return
		}
		o.typ = t
	}
}

// WithShape sets the row-major shape used when a payload has no metadata
// file. It requires WithElementType.
func WithShape(shape ...int) Option {
	return func(o *options) {
		for _, s := range shape {
			if s < 0 {
				o.invalid("negative extent in shape %v", shape)
				return
			}
		}
		o.shape = slices.Clone(shape)
	}
}
