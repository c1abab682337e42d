package mds

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-mds/internal/dtype"
)

// Config is the file form of the Open options.
//
//	iters: [0, 10]          # or "all" / "none"
//	prefixes: [T, S]
//	infer_prefixes: first   # or "all"
//	read_grid: true
//	swap_dims: false
//	endian: big             # or "little"
//	mmap: true
//	ref_date: "1990-1-1 0:0:0"
//	delta_t: 60             # seconds
//	layers: {1RHO: 31}
type Config struct {
	Iters          IterSpec       `yaml:"iters,omitempty"`
	Prefixes       []string       `yaml:"prefixes,omitempty"`
	InferPrefixes  string         `yaml:"infer_prefixes,omitempty"`
	ReadGrid       *bool          `yaml:"read_grid,omitempty"`
	SwapDims       bool           `yaml:"swap_dims,omitempty"`
	Endian         string         `yaml:"endian,omitempty"`
	Mmap           *bool          `yaml:"mmap,omitempty"`
	RefDate        string         `yaml:"ref_date,omitempty"`
	DeltaT         float64        `yaml:"delta_t,omitempty"`
	Layers         map[string]int `yaml:"layers,omitempty"`
	PreserveOrder  bool           `yaml:"preserve_iteration_order,omitempty"`
	DiagnosticsLog string         `yaml:"diagnostics_file,omitempty"`
}

// IterSpec selects iterations: all of them, none, or an explicit list.
type IterSpec struct {
	All   bool
	None  bool
	Iters []int64
}

// ParseIterSpec parses "all", "none" or a comma-separated list.
func ParseIterSpec(s string) (IterSpec, error) {
	switch s = strings.TrimSpace(strings.ToLower(s)); s {
	case "", "all":
		return IterSpec{All: true}, nil
	case "none":
		return IterSpec{None: true}, nil
	}
	var spec IterSpec
	for _, f := range strings.Split(s, ",") {
		it, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return IterSpec{}, fmt.Errorf("%w: bad iteration %q", ErrInvalidOption, f)
		}
		spec.Iters = append(spec.Iters, it)
	}
	return spec, nil
}

// UnmarshalYAML accepts a scalar ("all", "none", "0,10") or a sequence of
// integers.
func (s *IterSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		spec, err := ParseIterSpec(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*s = spec
		return nil
	case yaml.SequenceNode:
		var iters []int64
		if err := node.Decode(&iters); err != nil {
			return err
		}
		*s = IterSpec{Iters: iters}
		return nil
	}
	return fmt.Errorf("line %d: %w: iters must be a string or a list", node.Line, ErrInvalidOption)
}

// MarshalYAML writes the scalar or list form.
func (s IterSpec) MarshalYAML() (interface{}, error) {
	switch {
	case s.None:
		return "none", nil
	case len(s.Iters) > 0:
		return s.Iters, nil
	}
	return "all", nil
}

// IsZero reports an unset spec, which means all iterations.
func (s IterSpec) IsZero() bool {
	return !s.All && !s.None && len(s.Iters) == 0
}

// Option returns the iteration option for s.
func (s IterSpec) Option() Option {
	switch {
	case s.None:
		return WithNoIterations()
	case len(s.Iters) > 0:
		return WithIterations(s.Iters...)
	}
	return WithAllIterations()
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &c, nil
}

// Options converts the configuration to Open options.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{c.Iters.Option()}
	if len(c.Prefixes) > 0 {
		opts = append(opts, WithPrefixes(c.Prefixes...))
	}
	switch strings.ToLower(c.InferPrefixes) {
	case "", "first":
	case "all":
		opts = append(opts, WithPrefixInference(AllIterations))
	default:
		return nil, fmt.Errorf("%w: infer_prefixes %q", ErrInvalidOption, c.InferPrefixes)
	}
	if c.ReadGrid != nil {
		opts = append(opts, WithGrid(*c.ReadGrid))
	}
	if c.SwapDims {
		opts = append(opts, WithSwapDims(true))
	}
	if c.Endian != "" {
		order, err := dtype.ParseOrder(c.Endian)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		opts = append(opts, WithByteOrder(order))
	}
	if c.Mmap != nil {
		opts = append(opts, WithMmap(*c.Mmap))
	}
	if c.RefDate != "" {
		ref, err := ParseReferenceDate(c.RefDate)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithReferenceDate(ref))
	}
	if c.DeltaT != 0 {
		opts = append(opts, WithTimeStep(time.Duration(c.DeltaT*float64(time.Second))))
	}
	if len(c.Layers) > 0 {
		opts = append(opts, WithLayers(c.Layers))
	}
	if c.PreserveOrder {
		opts = append(opts, WithPreserveIterationOrder(true))
	}
	if c.DiagnosticsLog != "" {
		opts = append(opts, WithDiagnosticsFile(c.DiagnosticsLog))
	}
	return opts, nil
}
