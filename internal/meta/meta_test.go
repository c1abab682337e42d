package meta

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-mds/internal/dtype"
	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

const xcMeta = ` simulation = { 'global_oce_latlon' };
 nDims = [   2 ];
 dimList = [
    90,    1,   90,
    40,    1,   40
 ];
 dataprec = [ 'float32' ];
 nrecords = [     1 ];
`

const diagMeta = ` nDims = [   3 ];
 dimList = [
    90,    1,   90,
    40,    1,   40,
    15,    1,   15
 ];
 dataprec = [ 'float64' ];
 nrecords = [     3 ];
 timeStepNumber = [      39600 ];
 timeInterval = [  3.420000000000E+09  3.421000000000E+09 ];
 missingValue = [ -9.99000000000E+02 ];
 nFlds = [    3 ];
 fldList = {
 'TOTTTEND' 'ADVr_TH ' 'ADVx_TH '
 };
`

func TestParseXC(t *testing.T) {
	h, err := Parse(strings.NewReader(xcMeta), "/data/run/XC.meta")
	require.NoError(t, err)

	want := &Header{
		BaseName:   "XC",
		Simulation: "global_oce_latlon",
		NDims:      2,
		DimList:    []Dim{{90, 1, 90}, {40, 1, 40}},
		DataPrec:   dtype.Float32,
		NRecords:   1,
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{40, 90}, h.Shape())
	assert.Equal(t, int64(40*90*4), h.DataSize())
}

func TestParseOptionalFields(t *testing.T) {
	h, err := Parse(strings.NewReader(diagMeta), "DiagGAD-T.0000039600.meta")
	require.NoError(t, err)

	assert.Equal(t, "DiagGAD-T", h.BaseName)
	assert.Equal(t, []int{3, 15, 40, 90}, h.Shape())
	require.NotNil(t, h.TimeStepNumber)
	assert.Equal(t, int64(39600), *h.TimeStepNumber)
	assert.Equal(t, []string{"TOTTTEND", "ADVr_TH", "ADVx_TH"}, h.FieldList)
	require.NotNil(t, h.MissingValue)
	assert.Equal(t, -999.0, *h.MissingValue)
	assert.Equal(t, []float64{3.42e9, 3.421e9}, h.TimeInterval)
	assert.Equal(t, map[string]string{"nFlds": "[    3 ]"}, h.Extra)
}

func TestParseWhitespaceTolerance(t *testing.T) {
	compact := "nDims=[2];dimList=[4,1,4,3,1,3];dataprec=['float64'];nrecords=[1];"
	h, err := Parse(strings.NewReader(compact), "a.meta")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, h.Shape())

	spread := "\n\n  nDims\n=\n[\n1\n]\n;\n dimList = [ 7 1 7 ] ; dataprec = 'int32' ; nrecords = 1"
	h, err = Parse(strings.NewReader(spread), "b.meta")
	require.NoError(t, err)
	assert.Equal(t, []int{7}, h.Shape())
	assert.Equal(t, dtype.Int32, h.DataPrec)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target error
	}{
		{"missing nrecords", "nDims = [1]; dimList = [3,1,3]; dataprec = ['float32'];", mdserr.ErrMissingField},
		{"missing dataprec", "nDims = [1]; dimList = [3,1,3]; nrecords = [1];", mdserr.ErrMissingField},
		{"unknown precision", "nDims = [1]; dimList = [3,1,3]; dataprec = ['float16']; nrecords = [1];", mdserr.ErrUnknownPrecision},
		{"short dimList", "nDims = [2]; dimList = [3,1,3, 4,1]; dataprec = ['float32']; nrecords = [1];", nil},
		{"no equals", "nDims [1];", mdserr.ErrSyntax},
		{"unterminated list", "nDims = [1; dimList = [3,1,3];", mdserr.ErrSyntax},
		{"unterminated string", "dataprec = ['float32];", mdserr.ErrSyntax},
		{"duplicate", "nDims = [1]; nDims = [1];", mdserr.ErrSyntax},
		{"case sensitive", "ndims = [1]; dimList = [3,1,3]; dataprec = ['float32']; nrecords = [1];", mdserr.ErrMissingField},
		{"fldList count", "nDims = [1]; dimList = [3,1,3]; dataprec = ['float32']; nrecords = [2]; fldList = {'A'};", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.text), "bad.meta")
			require.Error(t, err)

			var fe *mdserr.FormatError
			require.True(t, errors.As(err, &fe), "expected FormatError, got %T: %v", err, err)
			assert.Equal(t, "bad.meta", fe.Path)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	step := int64(39600)
	missing := -999.0
	headers := []*Header{
		{
			BaseName:   "XC",
			Simulation: "global_oce_latlon",
			NDims:      2,
			DimList:    []Dim{{90, 1, 90}, {40, 1, 40}},
			DataPrec:   dtype.Float32,
			NRecords:   1,
		},
		{
			BaseName:       "DiagGAD-T",
			NDims:          3,
			DimList:        []Dim{{90, 1, 45}, {40, 21, 40}, {15, 1, 15}},
			DataPrec:       dtype.Float64,
			NRecords:       2,
			TimeStepNumber: &step,
			MissingValue:   &missing,
			TimeInterval:   []float64{0, 86400},
			FieldList:      []string{"UVEL", "VVEL"},
			Extra:          map[string]string{"nFlds": "[ 2 ]"},
		},
		{
			BaseName: "RC",
			NDims:    3,
			DimList:  []Dim{{1, 1, 1}, {1, 1, 1}, {15, 1, 15}},
			DataPrec: dtype.Int64,
			NRecords: 1,
		},
	}

	for _, h := range headers {
		t.Run(h.BaseName, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, h))

			got, err := Parse(&buf, h.BaseName+Ext)
			require.NoError(t, err)
			if diff := cmp.Diff(h, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "T.0000000010.meta")
	require.NoError(t, os.WriteFile(path, []byte(xcMeta), 0o644))

	h, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "T", h.BaseName)

	_, err = ParseFile(filepath.Join(dir, "missing.meta"))
	assert.True(t, mdserr.IsIO(err))
	assert.ErrorIs(t, err, mdserr.ErrMissingFile)
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"XC.meta":                   "XC",
		"/a/b/T.0000039600.data":    "T",
		"DiagGAD-T.0000000001.meta": "DiagGAD-T",
		"layers1RHO.meta":           "layers1RHO",
		"T.123.data":                "T.123",
	}
	for in, want := range tests {
		assert.Equal(t, want, BaseName(in), in)
	}
}
