package mds

import (
	"math"
	"math/bits"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/robert-malhotra/go-mds/internal/diagnostics"
	"github.com/robert-malhotra/go-mds/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// canMmap reports whether mapped reads are real mappings on this platform.
var canMmap = runtime.GOOS != "windows" && runtime.GOOS != "plan9"

func openT(t *testing.T, dir string, opts ...Option) *Dataset {
	t.Helper()
	ds, err := Open(dir, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds
}

func values(t *testing.T, ds *Dataset, name string) []float64 {
	t.Helper()
	v, err := ds.Variable(name)
	require.NoError(t, err)
	vals, err := v.ReadFloat64()
	require.NoError(t, err)
	return vals
}

// gridDims is the dimension table of an experiment opened without fields.
func gridDims(e testutil.Experiment) map[string]int {
	nz, ny, nx := e.Grid.NZ, e.Grid.NY, e.Grid.NX
	dims := map[string]int{
		"i": nx, "i_g": nx,
		"j": ny, "j_g": ny,
		"k": nz, "k_u": nz, "k_l": nz, "k_p1": nz + 1,
	}
	for name, n := range e.Layers {
		for offset, suffix := range diagnostics.LayerSuffixes {
			dims[diagnostics.LayerDimName(name, suffix)] = n - offset
		}
	}
	return dims
}

// asFloat32 is v as stored in a float32 file.
func asFloat32(v float64) float64 {
	return float64(float32(v))
}

// swapped is v as read from a big-endian float32 file with the wrong byte
// order.
func swapped(v float64) float64 {
	return float64(math.Float32frombits(bits.ReverseBytes32(math.Float32bits(float32(v)))))
}
