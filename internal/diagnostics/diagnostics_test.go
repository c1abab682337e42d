package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

const sampleLog = ` Total Nb of available Diagnostics: ndiagt=   6
 ------------------------------------------------------------------------
 Num |<-Name->|Levs|  mate |<- code ->|<--  Units   -->|<- Tile (max=80c)
 ------------------------------------------------------------------------
   1 |SDIAG1  |  1 |       |SM      L1|user-defined    |User-Defined   Surface   Diagnostic  #1
  23 |ETAN    |  1 |       |SM      M1|m               |Surface Height Anomaly
  30 |UVEL    | 15 |    31 |UUR     MR|m/s             |Zonal Component of Velocity (m/s)
  31 |VVEL    | 15 |    30 |VVR     MR|m/s             |Meridional Component of Velocity (m/s)
  32 |WVEL    | 15 |       |WM      LR|m/s             |Vertical Component of Velocity (r_units/s)
  74 |TFLUX   |  1 |       |SM      U1|W/m^2           |total heat flux (match heat-content variations), >0 increases theta
  90 |MOMVORT3| 15 |       |SZR     MR|s^-2            |3rd component (vertical) of Vorticity
 181 |LaUH1RHO| 30 |   182 |UU      MX|m.m/s           |Layer Integrated  zonal Transport (UH, m^2/s)
 182 |LaVH1RHO| 30 |   181 |VV      MX|m.m/s           |Layer Integrated merid. Transport (VH, m^2/s)
 185 |LaTs1RHO| 29 |       |SM      MX|degC            |Layer Integrated pot. temperature
 186 |LaHs1RHO| 31 |       |SM      MX|m               |Layer thickness | at bounds
 ------------------------------------------------------------------------
`

func TestParseCatalogue(t *testing.T) {
	cat, err := Parse(strings.NewReader(sampleLog), DefaultFileName, map[string]int{"1RHO": 31})
	require.NoError(t, err)
	require.Len(t, cat, 11)

	uvel := cat["UVEL"]
	require.NotNil(t, uvel)
	assert.Equal(t, []string{"k", "j", "i_g"}, uvel.Dims)
	assert.Equal(t, map[string]string{
		"units":         "m/s",
		"long_name":     "Zonal Component of Velocity (m/s)",
		"standard_name": "UVEL",
	}, uvel.Attrs)
	assert.Equal(t, 31, uvel.Mate)
	assert.Equal(t, 30, uvel.ID)

	tflux := cat["TFLUX"]
	assert.Equal(t, []string{"j", "i"}, tflux.Dims)
	assert.Equal(t, "total heat flux (match heat-content variations), >0 increases theta", tflux.Attrs["long_name"])
	assert.Equal(t, "W/m^2", tflux.Attrs["units"])

	assert.Equal(t, []string{"k", "j_g", "i"}, cat["VVEL"].Dims)
	assert.Equal(t, []string{"k_l", "j", "i"}, cat["WVEL"].Dims)
	assert.Equal(t, []string{"k", "j_g", "i_g"}, cat["MOMVORT3"].Dims)
	assert.Equal(t, []string{"j", "i"}, cat["ETAN"].Dims)

	assert.Equal(t, []string{"l1_c", "j", "i_g"}, cat["LaUH1RHO"].Dims)
	assert.Equal(t, []string{"l1_c", "j_g", "i"}, cat["LaVH1RHO"].Dims)
	assert.Equal(t, []string{"l1_i", "j", "i"}, cat["LaTs1RHO"].Dims)
	assert.Equal(t, []string{"l1_b", "j", "i"}, cat["LaHs1RHO"].Dims)
	assert.Equal(t, "Layer thickness | at bounds", cat["LaHs1RHO"].Attrs["long_name"])
}

func TestParseLayersUndeclared(t *testing.T) {
	cat, err := Parse(strings.NewReader(sampleLog), DefaultFileName, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{Unknown, "j", "i_g"}, cat["LaUH1RHO"].Dims)
}

func TestParseIsIdempotent(t *testing.T) {
	a, err := Parse(strings.NewReader(sampleLog), "a", nil)
	require.NoError(t, err)
	b, err := Parse(strings.NewReader(sampleLog), "a", nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseErrors(t *testing.T) {
	header := " Num |<-Name->|Levs|  mate |<- code ->|<--  Units   -->|<- Tile (max=80c)\n"
	tests := []struct {
		name string
		row  string
	}{
		{"too few columns", "  30 |UVEL    | 15 |    31 |UUR     MR|m/s\n"},
		{"bad number", "  3x |UVEL    | 15 |    31 |UUR     MR|m/s |Zonal\n"},
		{"bad levels", "  30 |UVEL    | ab |    31 |UUR     MR|m/s |Zonal\n"},
		{"bad mate", "  30 |UVEL    | 15 |    3y |UUR     MR|m/s |Zonal\n"},
		{"short code", "  30 |UVEL    | 15 |    31 |UUR|m/s |Zonal\n"},
		{"unknown location", "  30 |UVEL    | 15 |    31 |UQR     MR|m/s |Zonal\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := header + "  23 |ETAN    |  1 |       |SM      M1|m               |Surface Height Anomaly\n" + tt.row
			_, err := Parse(strings.NewReader(text), "diag.log", nil)
			require.Error(t, err)

			var fe *mdserr.FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, 3, fe.Line)
			assert.Equal(t, "diag.log", fe.Path)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))

	cat, err := ParseFile(path, nil)
	require.NoError(t, err)
	assert.Contains(t, cat, "UVEL")

	_, err = ParseFile(filepath.Join(dir, "none.log"), nil)
	assert.ErrorIs(t, err, mdserr.ErrMissingFile)
}

func TestLayerNames(t *testing.T) {
	assert.Equal(t, "1RHO", LayerName("LaUH1RHO"))
	assert.Equal(t, "1TH", LayerName("LaTs1TH"))
	assert.Equal(t, "l1_b", LayerDimName("1RHO", "bounds"))
	assert.Equal(t, "l1_i", LayerDimName("1RHO", "interface"))
}
