// Package diagnostics parses the available_diagnostics.log catalogue that the
// model writes at start-up.
//
// The catalogue is a pipe-delimited table, one diagnostic per row:
//
//	 Num |<-Name->|Levs|  mate |<- code ->|<--  Units   -->|<- Tile (max=80c)
//	 ------------------------------------------------------------------------
//	  30 |UVEL    | 15 |   31  |UUR     MR|m/s             |Zonal Component of Velocity (m/s)
//
// The 10-character code encodes the grid location: code[1] is the horizontal
// point (M: cell center, U: west face, V: south face, Z: vorticity corner),
// code[8] the vertical point (M: center, U: upper, L: lower) and code[9] the
// vertical extent (1: single level, R: model levels, X: layers levels).
package diagnostics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

// DefaultFileName is the catalogue's name in a run directory.
const DefaultFileName = "available_diagnostics.log"

// Unknown is used for a vertical axis the code table cannot resolve.
const Unknown = "_UNKNOWN_"

// Attribute keys.
const (
	AttrUnits        = "units"
	AttrLongName     = "long_name"
	AttrStandardName = "standard_name"
)

// Spec describes one catalogued diagnostic.
type Spec struct {
	Name   string
	ID     int
	Levels int
	Mate   int // 0 when the diagnostic has no vector mate
	Code   string
	Dims   []string
	Attrs  map[string]string
}

// Catalogue maps diagnostic names to their specs.
type Catalogue map[string]*Spec

var (
	xCoords = map[byte]string{'U': "i_g", 'V': "i", 'M': "i", 'Z': "i_g"}
	yCoords = map[byte]string{'U': "j", 'V': "j_g", 'M': "j", 'Z': "j_g"}
	rCoords = map[byte]string{'M': "k", 'U': "k_u", 'L': "k_l"}
)

const columns = 7

// ParseFile parses the catalogue at path. layers maps layer names (e.g.
// "1RHO") to their declared number of bounds and is used to resolve
// layers-level diagnostics; it may be nil.
func ParseFile(path string, layers map[string]int) (Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdserr.IO(path, mdserr.ErrMissingFile)
		}
		return nil, mdserr.IO(path, err)
	}
	defer f.Close()
	return Parse(f, path, layers)
}

// Parse parses catalogue text. path is used in errors.
func Parse(r io.Reader, path string, layers map[string]int) (Catalogue, error) {
	cat := make(Catalogue)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if !strings.Contains(line, "|") {
			continue
		}
		cols := strings.SplitN(line, "|", columns)
		if strings.TrimSpace(cols[0]) == "Num" {
			continue
		}
		if len(cols) != columns {
			return nil, &mdserr.FormatError{Path: path, Line: lineNo,
				Err: fmt.Errorf("%w: expected %d columns, got %d", mdserr.ErrSyntax, columns, len(cols))}
		}

		spec, err := parseRow(cols, layers)
		if err != nil {
			return nil, &mdserr.FormatError{Path: path, Line: lineNo, Err: err}
		}
		cat[spec.Name] = spec
	}
	if err := sc.Err(); err != nil {
		return nil, mdserr.IO(path, err)
	}
	return cat, nil
}

func parseRow(cols []string, layers map[string]int) (*Spec, error) {
	id, err := strconv.Atoi(strings.TrimSpace(cols[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid diagnostic number %q", mdserr.ErrSyntax, cols[0])
	}
	name := strings.TrimSpace(cols[1])
	if name == "" {
		return nil, fmt.Errorf("%w: empty diagnostic name", mdserr.ErrSyntax)
	}
	levs, err := strconv.Atoi(strings.TrimSpace(cols[2]))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid level count %q", mdserr.ErrSyntax, cols[2])
	}
	mate := 0
	if m := strings.TrimSpace(cols[3]); m != "" {
		if mate, err = strconv.Atoi(m); err != nil {
			return nil, fmt.Errorf("%w: invalid mate %q", mdserr.ErrSyntax, cols[3])
		}
	}
	code := cols[4]
	if len(code) < 10 {
		return nil, fmt.Errorf("%w: code %q shorter than 10 characters", mdserr.ErrSyntax, code)
	}

	x, okX := xCoords[code[1]]
	y, okY := yCoords[code[1]]
	if !okX || !okY {
		return nil, fmt.Errorf("%w: unknown horizontal location %q in code %q", mdserr.ErrSyntax, code[1], code)
	}

	dims := append(verticalDims(name, code, levs, layers), y, x)
	units := strings.TrimSpace(cols[5])
	return &Spec{
		Name:   name,
		ID:     id,
		Levels: levs,
		Mate:   mate,
		Code:   code,
		Dims:   dims,
		Attrs: map[string]string{
			AttrStandardName: name,
			AttrLongName:     strings.TrimSpace(cols[6]),
			AttrUnits:        units,
		},
	}, nil
}

func verticalDims(name, code string, levs int, layers map[string]int) []string {
	rpoint, rlev := code[8], code[9]
	switch {
	case rlev == '1' && levs == 1:
		return nil
	case rlev == 'R':
		if z, ok := rCoords[rpoint]; ok {
			return []string{z}
		}
	case rlev == 'X':
		if dim, ok := layerDim(name, levs, layers); ok {
			return []string{dim}
		}
	}
	return []string{Unknown}
}

// LayerName extracts the layer name from a layers diagnostic name: the last
// four characters of the name padded to eight ("LaUH1RHO" -> "1RHO").
func LayerName(diag string) string {
	padded := fmt.Sprintf("%-8s", diag)
	return strings.TrimSpace(padded[len(padded)-4:])
}

// LayerDimName returns the dimension name of a layers axis: "l" + the
// layer's first character + "_" + the suffix's first letter.
func LayerDimName(layer, suffix string) string {
	return "l" + layer[:1] + "_" + suffix[:1]
}

// Layer axis suffixes, in order of decreasing length.
var LayerSuffixes = []string{"bounds", "center", "interface"}

func layerDim(name string, levs int, layers map[string]int) (string, bool) {
	layer := LayerName(name)
	n, ok := layers[layer]
	if !ok || layer == "" {
		return "", false
	}
	for offset, suffix := range LayerSuffixes {
		if levs == n-offset {
			return LayerDimName(layer, suffix), true
		}
	}
	return "", false
}
