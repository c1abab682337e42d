package mds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-mds/internal/testutil"
)

func TestParseIterSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    IterSpec
		wantErr bool
	}{
		{"", IterSpec{All: true}, false},
		{"all", IterSpec{All: true}, false},
		{"NONE", IterSpec{None: true}, false},
		{"0, 10,20", IterSpec{Iters: []int64{0, 10, 20}}, false},
		{"10", IterSpec{Iters: []int64{10}}, false},
		{"10x", IterSpec{}, true},
		{"1,,2", IterSpec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIterSpec(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOption)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIterSpecYAML(t *testing.T) {
	tests := []struct {
		doc  string
		want IterSpec
	}{
		{"iters: all", IterSpec{All: true}},
		{"iters: none", IterSpec{None: true}},
		{"iters: \"0,10\"", IterSpec{Iters: []int64{0, 10}}},
		{"iters: [0, 100, 200]", IterSpec{Iters: []int64{0, 100, 200}}},
		{"prefixes: [T]", IterSpec{}},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			var c Config
			require.NoError(t, yaml.Unmarshal([]byte(tt.doc), &c))
			assert.Equal(t, tt.want, c.Iters)
		})
	}

	var c Config
	err := yaml.Unmarshal([]byte("iters: {a: 1}"), &c)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestConfigMarshal(t *testing.T) {
	out, err := yaml.Marshal(Config{Iters: IterSpec{Iters: []int64{0, 10}}, Prefixes: []string{"T"}})
	require.NoError(t, err)
	assert.Equal(t, "iters:\n    - 0\n    - 10\nprefixes:\n    - T\n", string(out))

	out, err = yaml.Marshal(Config{SwapDims: true})
	require.NoError(t, err)
	assert.Equal(t, "swap_dims: true\n", string(out), "unset iters are omitted")

	out, err = yaml.Marshal(Config{Iters: IterSpec{None: true}})
	require.NoError(t, err)
	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, IterSpec{None: true}, back.Iters)
}

func TestLoadConfigOpen(t *testing.T) {
	e := testutil.InternalWave()
	dir := e.Write(t)
	path := testutil.WriteFile(t, t.TempDir(), "mds.yaml", `
iters: [200, 0]
prefixes: [T, S]
read_grid: false
swap_dims: true
endian: big
mmap: false
ref_date: "1990-1-1 0:0:0"
delta_t: 60
preserve_iteration_order: true
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{200, 0}, c.Iters.Iters)
	assert.Equal(t, 60.0, c.DeltaT)

	opts, err := c.Options()
	require.NoError(t, err)
	ds := openT(t, dir, opts...)

	assert.Equal(t, []int64{200, 0}, ds.Iterations())
	assert.Equal(t, []string{"S", "T"}, ds.VarNames())
	assert.False(t, ds.Var("T").Mapped())
	assert.Equal(t, time.Date(1990, 1, 1, 3, 20, 0, 0, time.UTC), ds.Times()[0])
	// Without the grid no coordinate is loaded to swap with.
	assert.Equal(t, []string{TimeDim, "k", "j", "i"}, ds.Var("T").Dims())
}

func TestConfigOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		c    Config
	}{
		{"infer", Config{InferPrefixes: "sometimes"}},
		{"endian", Config{Endian: "middle"}},
		{"ref date", Config{RefDate: "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.c.Options()
			assert.ErrorIs(t, err, ErrInvalidOption)
		})
	}

	// Invalid values that parse are reported by Open.
	opts, err := (&Config{DeltaT: -1}).Options()
	require.NoError(t, err)
	_, err = Open(t.TempDir(), opts...)
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = LoadConfig("/nonexistent/mds.yaml")
	assert.Error(t, err)
}
