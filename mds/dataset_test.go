package mds

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/robert-malhotra/go-mds/internal/testutil"
)

func TestWalk(t *testing.T) {
	dir := testutil.BarotropicGyre().Write(t)
	ds := openT(t, dir, WithPrefixes("Eta", "T"))

	var coords, vars []string
	err := Walk(ds, func(v *Variable, coord bool) error {
		if coord {
			coords = append(coords, v.Name())
		} else {
			vars = append(vars, v.Name())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, ds.CoordNames(), coords)
	assert.Equal(t, ds.VarNames(), vars)
	assert.Contains(t, coords, IterCoord)
	assert.Contains(t, vars, "Eta")

	var n int
	err = Walk(ds, func(*Variable, bool) error {
		n++
		if n == 3 {
			return ErrStopWalk
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	boom := errors.New("boom")
	err = Walk(ds, func(*Variable, bool) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{IndexCoord, "index"},
		{GridVar, "grid"},
		{LayerCoord, "layer"},
		{FieldVar, "field"},
		{TimeVar, "time"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

// writeCatalogue replaces the run's diagnostics catalogue with rows.
func writeCatalogue(t *testing.T, dir string, rows ...string) {
	t.Helper()
	text := "Total Nb of available Diagnostics: ndiagt=  3\n" +
		"------------------------------------------------------------------------------------\n" +
		"Num |<-Name->|Levs|  mate |<- code ->|<--  Units   -->|<- Tile (max=80c)\n" +
		"------------------------------------------------------------------------------------\n"
	for _, r := range rows {
		text += r + "\n"
	}
	testutil.WriteFile(t, dir, "available_diagnostics.log", text)
}

func TestCatalogueMismatchInfersDims(t *testing.T) {
	e := testutil.BarotropicGyre()
	dir := e.Write(t)
	g := e.Grid

	// THETA is declared with more levels than the file has.
	writeCatalogue(t, dir,
		testutil.CatalogueRow(1, "THETA", 15, 0, "SMR     MR", "degC", "Potential Temperature"),
		testutil.CatalogueRow(2, "WEIRD", 1, 0, "SM      M1", "1", "Odd field"),
	)
	testutil.WriteField(t, dir, testutil.Field{Name: "THETA", Iter: 0, Shape: []int{3, g.NY, g.NX}})
	testutil.WriteField(t, dir, testutil.Field{Name: "WEIRD", Iter: 0, Shape: []int{7}})
	testutil.WriteField(t, dir, testutil.Field{Name: "RHOAnoma", Iter: 0, Shape: []int{g.NZ + 1}})

	core, logs := observer.New(zapcore.WarnLevel)
	ds := openT(t, dir, WithIterations(0), WithPrefixes("THETA", "WEIRD", "RHOAnoma"),
		WithLogger(zap.New(core)))

	assert.Equal(t, []string{TimeDim, "THETA_dim0", "j", "i"}, ds.Var("THETA").Dims())
	n, ok := ds.Dim("THETA_dim0")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	units, _ := ds.Var("THETA").Attr(AttrUnits)
	assert.Equal(t, "degC", units, "catalogue attributes are kept")

	assert.Equal(t, []string{TimeDim, "WEIRD_dim0"}, ds.Var("WEIRD").Dims())
	assert.Equal(t, []string{TimeDim, "k_p1"}, ds.Var("RHOAnoma").Dims())

	warned := logs.FilterMessage("dims do not fit data, inferring from shape")
	require.Equal(t, 2, warned.Len())
	assert.Equal(t, "THETA", warned.All()[0].ContextMap()["var"])
}

func TestRecordsChangeBetweenIterations(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteGrid(t, dir, testutil.Grid{NX: 4, NY: 3, NZ: 2, DX: 1, DY: 1})
	testutil.WriteField(t, dir, testutil.Field{Name: "diags", Iter: 0, Shape: []int{3, 4}, Records: []string{"A", "B"}})
	testutil.WriteField(t, dir, testutil.Field{Name: "diags", Iter: 1, Shape: []int{3, 4}, Records: []string{"A", "C"}})

	_, err := Open(dir, WithPrefixes("diags"))
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Contains(t, err.Error(), "record B missing")

	testutil.WriteField(t, dir, testutil.Field{Name: "diags", Iter: 1, Shape: []int{4, 3}, Records: []string{"A", "B"}})
	_, err = Open(dir, WithPrefixes("diags"))
	assert.ErrorIs(t, err, ErrSizeMismatch)

	testutil.WriteField(t, dir, testutil.Field{Name: "diags", Iter: 1, Shape: []int{3, 4}, Records: []string{"A", "B"}, Offset: 100})
	ds := openT(t, dir, WithPrefixes("diags"))
	assert.Equal(t, []string{TimeDim, "j", "i"}, ds.Var("A").Dims())
	assert.Equal(t, []int{2, 3, 4}, ds.Var("B").Shape())
	v, err := ds.Var("B").Float64At(12)
	require.NoError(t, err)
	assert.Equal(t, 112.0, v)
}

func TestDatasetClosedVariable(t *testing.T) {
	dir := testutil.BarotropicGyre().Write(t)
	ds, err := Open(dir, WithNoIterations())
	require.NoError(t, err)
	xc := ds.Var("XC")
	require.NotNil(t, xc)
	require.NoError(t, ds.Close())

	_, err = xc.ReadFloat64()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = xc.Float64At(0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = xc.Slab(0)
	assert.ErrorIs(t, err, ErrClosed)
}
