package testutil

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/robert-malhotra/go-mds/internal/dtype"
)

// Grid describes the horizontal and vertical layout of a run.
type Grid struct {
	NX, NY, NZ int
	X0, DX     float64
	Y0, DY     float64
}

// GridFiles lists every grid file WriteGrid produces.
var GridFiles = []string{
	"XC", "YC", "XG", "YG", "RC", "RF", "DXC", "DYC", "DXG", "DYG",
	"RAC", "RAW", "RAS", "RAZ", "Depth", "DRC", "DRF",
	"hFacC", "hFacW", "hFacS", "PHrefC", "PHrefF",
}

// WriteGrid writes the grid files of g into dir as big-endian float32.
func WriteGrid(t testing.TB, dir string, g Grid) {
	t.Helper()
	nx, ny, nz := g.NX, g.NY, g.NZ

	horizontal := func(name string, f func(j, i int) float64) {
		values := make([]float64, 0, nx*ny)
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				values = append(values, f(j, i))
			}
		}
		WriteField(t, dir, Field{Name: name, Iter: NoIter, Shape: []int{ny, nx}, Values: values})
	}
	vertical := func(name string, n int, f func(k int) float64) {
		values := make([]float64, n)
		for k := range values {
			values[k] = f(k)
		}
		WriteField(t, dir, Field{Name: name, Iter: NoIter, Shape: []int{n, 1, 1}, Values: values})
	}
	constant := func(v float64) func(j, i int) float64 {
		return func(int, int) float64 { return v }
	}

	horizontal("XC", func(j, i int) float64 { return g.X0 + g.DX*float64(i) })
	horizontal("YC", func(j, i int) float64 { return g.Y0 + g.DY*float64(j) })
	horizontal("XG", func(j, i int) float64 { return g.X0 - g.DX/2 + g.DX*float64(i) })
	horizontal("YG", func(j, i int) float64 { return g.Y0 - g.DY/2 + g.DY*float64(j) })
	for _, name := range []string{"DXC", "DYC", "DXG", "DYG"} {
		horizontal(name, constant(1e5))
	}
	for _, name := range []string{"RAC", "RAW", "RAS", "RAZ"} {
		horizontal(name, constant(1e10))
	}
	horizontal("Depth", constant(5000))

	vertical("RC", nz, func(k int) float64 { return -5 - 10*float64(k) })
	vertical("RF", nz+1, func(k int) float64 { return -10 * float64(k) })
	vertical("DRF", nz, func(int) float64 { return 10 })
	vertical("DRC", nz+1, func(k int) float64 {
		if k == 0 || k == nz {
			return 5
		}
		return 10
	})
	vertical("PHrefC", nz, func(k int) float64 { return 50 + 100*float64(k) })
	vertical("PHrefF", nz+1, func(k int) float64 { return 100 * float64(k) })

	ones := make([]float64, nz*ny*nx)
	for i := range ones {
		ones[i] = 1
	}
	for _, name := range []string{"hFacC", "hFacW", "hFacS"} {
		WriteField(t, dir, Field{Name: name, Iter: NoIter, Shape: []int{nz, ny, nx}, Values: ones})
	}
}

// Experiment is a synthetic run directory layout.
type Experiment struct {
	Name string
	Grid Grid
	// Iters are the iterations the state prefixes are written at.
	Iters []int64
	// Prefixes are state fields written at every iteration.
	Prefixes []string
	// FirstOnly are state fields written only at the first iteration.
	FirstOnly []string
	// Layers maps layer names to their number of bounds; a layers<name>
	// grid file is written for each.
	Layers map[string]int
	// Diagnostics writes the catalogue and diagnostics output at the
	// first iteration.
	Diagnostics bool
	// RefDate and DeltaT are the run's calendar settings, for tests.
	RefDate string
	DeltaT  int
}

// Shape returns (nz, ny, nx).
func (e Experiment) Shape() [3]int {
	return [3]int{e.Grid.NZ, e.Grid.NY, e.Grid.NX}
}

// Write synthesizes the experiment into a new temporary directory.
func (e Experiment) Write(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	g := e.Grid
	WriteGrid(t, dir, g)

	for n, iter := range e.Iters {
		prefixes := e.Prefixes
		if n == 0 {
			prefixes = append(append([]string(nil), prefixes...), e.FirstOnly...)
		}
		for _, p := range prefixes {
			WriteField(t, dir, Field{Name: p, Iter: iter, Shape: stateShape(p, g), Offset: float64(iter)})
		}
	}

	names := make([]string, 0, len(e.Layers))
	for name := range e.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n := e.Layers[name]
		values := make([]float64, n)
		for k := range values {
			values[k] = 20 + 0.25*float64(k)
		}
		WriteField(t, dir, Field{Name: "layers" + name, Iter: NoIter, Shape: []int{n, 1, 1}, Values: values})
	}

	if e.Diagnostics {
		e.writeDiagnostics(t, dir)
	}
	return dir
}

func stateShape(prefix string, g Grid) []int {
	switch prefix {
	case "Eta", "PHL":
		return []int{g.NY, g.NX}
	default:
		return []int{g.NZ, g.NY, g.NX}
	}
}

// GADRecords are the components of the DiagGAD-T diagnostics file.
var GADRecords = []string{
	"TOTTTEND", "ADVr_TH", "ADVx_TH", "ADVy_TH", "DFrE_TH", "DFxE_TH",
	"DFyE_TH", "DFrI_TH", "UTHMASS", "VTHMASS", "WTHMASS",
}

var gadCodes = map[string]string{
	"ADVr_TH": "WM      LR",
	"ADVx_TH": "UU      MR",
	"ADVy_TH": "VV      MR",
	"DFrE_TH": "WM      LR",
	"DFxE_TH": "UU      MR",
	"DFyE_TH": "VV      MR",
	"DFrI_TH": "WM      LR",
	"UTHMASS": "UU      MR",
	"VTHMASS": "VV      MR",
	"WTHMASS": "WM      LR",
}

func (e Experiment) writeDiagnostics(t testing.TB, dir string) {
	t.Helper()
	g := e.Grid
	iter := e.Iters[0]

	// DiagGAD-T is written without fldList so its names come from the
	// static record table.
	WriteField(t, dir, Field{
		Name: "DiagGAD-T", Iter: iter, Type: dtype.Float64,
		Shape: []int{g.NZ, g.NY, g.NX}, Records: GADRecords, NoFieldList: true,
	})

	var rows []string
	row := func(name string, levs int, code, units, title string) {
		rows = append(rows, CatalogueRow(len(rows)+1, name, levs, 0, code, units, title))
	}
	row("ETAN", 1, "SM      M1", "m", "Surface Height Anomaly")
	row("TFLUX", 1, "SM      U1", "W/m^2", "total heat flux (match heat-content variations), >0 increases theta")
	row("UVEL", g.NZ, "UUR     MR", "m/s", "Zonal Component of Velocity (m/s)")
	row("VVEL", g.NZ, "VVR     MR", "m/s", "Meridional Component of Velocity (m/s)")
	row("WVEL", g.NZ, "WM      LR", "m/s", "Vertical Component of Velocity (r_units/s)")
	row("TOTTTEND", g.NZ, "SMR     MR", "degC/day", "Tendency of Potential Temperature")
	for _, name := range GADRecords[1:] {
		row(name, g.NZ, gadCodes[name], "degC.m^3/s", "Temperature tracer flux component "+name)
	}

	for name, n := range e.Layers {
		layerDiags := []struct {
			prefix string
			levs   int
			code   string
			shape  []int
		}{
			{"LaUH", n - 1, "UU      MX", []int{n - 1, g.NY, g.NX}},
			{"LaVH", n - 1, "VV      MX", []int{n - 1, g.NY, g.NX}},
			{"LaTs", n - 2, "SM      MX", []int{n - 2, g.NY, g.NX}},
		}
		for _, d := range layerDiags {
			row(d.prefix+name, d.levs, d.code, "m.m/s", "Layer Integrated "+d.prefix)
			WriteField(t, dir, Field{Name: d.prefix + name, Iter: iter, Shape: d.shape})
		}
	}

	text := " Total Nb of available Diagnostics: ndiagt=" + fmt.Sprint(len(rows)) + "\n" +
		" " + strings.Repeat("-", 72) + "\n" +
		" Num |<-Name->|Levs|  mate |<- code ->|<--  Units   -->|<- Tile (max=80c)\n" +
		" " + strings.Repeat("-", 72) + "\n" +
		strings.Join(rows, "\n") + "\n" +
		" " + strings.Repeat("-", 72) + "\n"
	WriteFile(t, dir, "available_diagnostics.log", text)
}

// CatalogueRow formats one available_diagnostics.log row.
func CatalogueRow(num int, name string, levs, mate int, code, units, title string) string {
	mateCol := "       "
	if mate > 0 {
		mateCol = fmt.Sprintf(" %5d ", mate)
	}
	return fmt.Sprintf(" %3d |%-8s|%3d |%s|%-10s|%-16s|%s", num, name, levs, mateCol, code, units, title)
}

// GlobalOceLatLon is a 4-degree global ocean with layers and diagnostics.
func GlobalOceLatLon() Experiment {
	return Experiment{
		Name:        "global_oce_latlon",
		Grid:        Grid{NX: 90, NY: 40, NZ: 15, X0: 2, DX: 4, Y0: -78, DY: 4},
		Iters:       []int64{39600},
		Prefixes:    []string{"U", "V", "W", "T", "S", "PH", "PHL", "Eta"},
		Layers:      map[string]int{"1RHO": 31},
		Diagnostics: true,
	}
}

// BarotropicGyre is a single-level box with two output iterations. PH and
// PHL are only written at iteration 0.
func BarotropicGyre() Experiment {
	return Experiment{
		Name:      "barotropic_gyre",
		Grid:      Grid{NX: 60, NY: 60, NZ: 1, X0: 10000, DX: 20000, Y0: 10000, DY: 20000},
		Iters:     []int64{0, 10},
		Prefixes:  []string{"T", "S", "Eta", "U", "V", "W"},
		FirstOnly: []string{"PH", "PHL"},
	}
}

// InternalWave is a two-dimensional x-z section with a calendar.
func InternalWave() Experiment {
	return Experiment{
		Name:      "internal_wave",
		Grid:      Grid{NX: 30, NY: 1, NZ: 20, X0: 109.01639344262296, DX: 218.03278688524592, Y0: 0, DY: 1},
		Iters:     []int64{0, 100, 200},
		Prefixes:  []string{"T", "S", "Eta", "U", "V", "W"},
		FirstOnly: []string{"PH", "PHL"},
		RefDate:   "1990-1-1 0:0:0",
		DeltaT:    60,
	}
}

// Experiments returns every preset.
func Experiments() []Experiment {
	return []Experiment{GlobalOceLatLon(), BarotropicGyre(), InternalWave()}
}
