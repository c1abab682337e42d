package raw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-mds/internal/dtype"
	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

func writePayload(t *testing.T, typ dtype.Type, order binary.ByteOrder, values []float64) string {
	t.Helper()
	data, err := dtype.EncodeFloat64(typ, order, values)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "tmp.data")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadRoundTrip(t *testing.T) {
	shape := []int{2, 4}
	values := []float64{0, 1, 2, 3, -4, 5.5, 6, 7}

	for _, typ := range []dtype.Type{dtype.Float64, dtype.Float32, dtype.Int32, dtype.Int16, dtype.Int64} {
		for _, mmap := range []bool{false, true} {
			name := typ.String()
			if mmap {
				name += "/mmap"
			}
			t.Run(name, func(t *testing.T) {
				vals := values
				if !typ.IsFloat() {
					vals = []float64{0, 1, 2, 3, -4, 5, 6, 7}
				}
				path := writePayload(t, typ, binary.BigEndian, vals)
				orig, err := os.ReadFile(path)
				require.NoError(t, err)

				a, err := Open(path, Spec{Type: typ, Shape: shape, Mmap: mmap})
				require.NoError(t, err)
				defer a.Close()

				assert.Equal(t, mmap, a.Mapped())
				assert.Equal(t, shape, a.Shape())
				assert.Equal(t, vals, a.Float64s())
				assert.True(t, bytes.Equal(orig, a.Encode(binary.BigEndian)), "re-encoding must reproduce the file")
			})
		}
	}
}

func TestReadWrongShape(t *testing.T) {
	path := writePayload(t, dtype.Float32, binary.BigEndian, make([]float64, 8))

	for _, mmap := range []bool{false, true} {
		a, err := Open(path, Spec{Type: dtype.Float32, Shape: []int{2, 5}, Mmap: mmap})
		require.Error(t, err)
		assert.Nil(t, a)
		assert.True(t, mdserr.IsIO(err))
		assert.ErrorIs(t, err, mdserr.ErrSizeMismatch)

		var ioErr *mdserr.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, path, ioErr.Path)
	}

	// Right element count, wrong element size.
	_, err := Read(path, dtype.Float64, []int{2, 4}, binary.BigEndian)
	assert.ErrorIs(t, err, mdserr.ErrSizeMismatch)
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.data"), dtype.Float32, []int{1}, binary.BigEndian)
	assert.True(t, mdserr.IsIO(err))
	assert.ErrorIs(t, err, mdserr.ErrMissingFile)
}

func TestByteOrderToggle(t *testing.T) {
	path := writePayload(t, dtype.Float32, binary.BigEndian, []float64{2, 3})

	for _, mmap := range []bool{false, true} {
		big, err := Open(path, Spec{Type: dtype.Float32, Shape: []int{2}, Order: binary.BigEndian, Mmap: mmap})
		require.NoError(t, err)
		little, err := Open(path, Spec{Type: dtype.Float32, Shape: []int{2}, Order: binary.LittleEndian, Mmap: mmap})
		require.NoError(t, err)

		assert.Equal(t, 2.0, big.Float64At(0))
		assert.NotEqual(t, big.Float64At(0), little.Float64At(0))

		raw, _ := os.ReadFile(path)
		assert.True(t, bytes.Equal(raw, little.Encode(binary.LittleEndian)))

		require.NoError(t, big.Close())
		require.NoError(t, little.Close())
	}
}

func TestOwnedReadIsIndependent(t *testing.T) {
	path := writePayload(t, dtype.Float64, binary.BigEndian, []float64{1, 2, 3})

	a, err := Read(path, dtype.Float64, []int{3}, binary.BigEndian)
	require.NoError(t, err)

	overwrite, _ := dtype.EncodeFloat64(dtype.Float64, binary.BigEndian, []float64{9, 9, 9})
	require.NoError(t, os.WriteFile(path, overwrite, 0o644))
	assert.Equal(t, []float64{1, 2, 3}, a.Float64s())

	v, ok := dtype.View[float64](a.Bytes())
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, v)
}

func TestMappingRefCount(t *testing.T) {
	path := writePayload(t, dtype.Float32, binary.BigEndian, []float64{0, 1, 2, 3, 4, 5})
	base := LiveMappings()

	a, err := Map(path, dtype.Float32, []int{3, 2}, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, base+1, LiveMappings())

	rec, err := a.Record(2)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, rec.Shape())
	assert.Equal(t, []float64{4, 5}, rec.Float64s())

	// The parent can go first; the record keeps the mapping alive.
	require.NoError(t, a.Close())
	assert.Equal(t, base+1, LiveMappings())
	assert.Equal(t, 5.0, rec.Float64At(1))

	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())
	assert.Equal(t, base, LiveMappings())
}

func TestMaxMapCount(t *testing.T) {
	path := writePayload(t, dtype.Float32, binary.BigEndian, []float64{1})

	saved := MaxMapCount
	MaxMapCount = LiveMappings()
	defer func() { MaxMapCount = saved }()

	_, err := Map(path, dtype.Float32, []int{1}, binary.BigEndian)
	if err == nil {
		t.Skip("platform has no mmap")
	}
	assert.ErrorIs(t, err, mdserr.ErrMaxMapCount)
}
