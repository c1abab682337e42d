// Package meta parses and writes MDS metadata (.meta) files.
//
// A metadata file is a sequence of statements
//
//	name = value;
//
// where value is a number, a quoted string, or a list in [...] or {...}
// whose items are separated by commas and/or whitespace:
//
//	 simulation = { 'global_oce_latlon' };
//	 nDims = [   2 ];
//	 dimList = [
//	    90,    1,   90,
//	    40,    1,   40
//	 ];
//	 dataprec = [ 'float32' ];
//	 nrecords = [     1 ];
//
// dimList holds one (global extent, start, end) triple per axis, fastest
// varying axis first. Identifiers are case-sensitive.
package meta

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/robert-malhotra/go-mds/internal/dtype"
	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

// Ext is the metadata file extension.
const Ext = ".meta"

// Dim is one dimList triple. Start and End are 1-based and inclusive.
type Dim struct {
	Global int
	Start  int
	End    int
}

// Extent returns the number of points this file holds along the axis.
func (d Dim) Extent() int {
	return d.End - d.Start + 1
}

// Header is a parsed metadata file.
type Header struct {
	BaseName   string
	Simulation string
	NDims      int
	DimList    []Dim
	DataPrec   dtype.Type
	NRecords   int

	// Optional fields.
	TimeStepNumber *int64
	FieldList      []string
	MissingValue   *float64
	TimeInterval   []float64

	// Extra holds unrecognized statements as their raw value text.
	Extra map[string]string
}

// Shape returns the row-major payload shape: the dim list reversed, with a
// leading record axis when the file holds more than one record.
func (h *Header) Shape() []int {
	shape := make([]int, 0, len(h.DimList)+1)
	if h.NRecords > 1 {
		shape = append(shape, h.NRecords)
	}
	for i := len(h.DimList) - 1; i >= 0; i-- {
		shape = append(shape, h.DimList[i].Extent())
	}
	return shape
}

// NumElements returns the number of elements in the payload.
func (h *Header) NumElements() int {
	n := 1
	for _, s := range h.Shape() {
		n *= s
	}
	return n
}

// DataSize returns the expected payload size in bytes.
func (h *Header) DataSize() int64 {
	return int64(h.NumElements()) * int64(h.DataPrec.Size())
}

var iterSuffix = regexp.MustCompile(`\.[0-9]{10}$`)

// BaseName returns the field name of a metadata or data path: the file name
// without extension and without a 10-digit iteration suffix.
func BaseName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return iterSuffix.ReplaceAllString(name, "")
}

// ParseFile parses the metadata file at path.
func ParseFile(path string) (*Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdserr.IO(path, mdserr.ErrMissingFile)
		}
		return nil, mdserr.IO(path, err)
	}
	return Parse(bytes.NewReader(data), path)
}

// Parse parses metadata text. path is used for the base name and in errors.
func Parse(r io.Reader, path string) (*Header, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, mdserr.IO(path, err)
	}

	stmts, err := parseStatements(src)
	if err != nil {
		return nil, &mdserr.FormatError{Path: path, Err: fmt.Errorf("%w: %v", mdserr.ErrSyntax, err)}
	}

	h, err := buildHeader(stmts)
	if err != nil {
		return nil, &mdserr.FormatError{Path: path, Err: err}
	}
	h.BaseName = BaseName(path)
	return h, nil
}

var requiredFields = []string{"nDims", "dimList", "dataprec", "nrecords"}

func buildHeader(stmts map[string]*statement) (*Header, error) {
	for _, name := range requiredFields {
		if _, ok := stmts[name]; !ok {
			return nil, fmt.Errorf("%w: %s", mdserr.ErrMissingField, name)
		}
	}

	h := &Header{}
	var err error

	if h.NDims, err = stmts["nDims"].int(); err != nil {
		return nil, fmt.Errorf("nDims: %w", err)
	}
	if h.NDims < 0 {
		return nil, fmt.Errorf("nDims: negative value %d", h.NDims)
	}
	if h.NRecords, err = stmts["nrecords"].int(); err != nil {
		return nil, fmt.Errorf("nrecords: %w", err)
	}
	if h.NRecords < 1 {
		return nil, fmt.Errorf("nrecords: must be positive, got %d", h.NRecords)
	}

	prec, err := stmts["dataprec"].str()
	if err != nil {
		return nil, fmt.Errorf("dataprec: %w", err)
	}
	if h.DataPrec, err = dtype.ParsePrecision(prec); err != nil {
		return nil, err
	}

	flat, err := stmts["dimList"].ints()
	if err != nil {
		return nil, fmt.Errorf("dimList: %w", err)
	}
	if len(flat) != 3*h.NDims {
		return nil, fmt.Errorf("dimList: expected %d values for %d dimensions, got %d", 3*h.NDims, h.NDims, len(flat))
	}
	h.DimList = make([]Dim, h.NDims)
	for i := range h.DimList {
		d := Dim{Global: int(flat[3*i]), Start: int(flat[3*i+1]), End: int(flat[3*i+2])}
		if d.Extent() < 1 {
			return nil, fmt.Errorf("dimList: axis %d has empty range %d..%d", i, d.Start, d.End)
		}
		h.DimList[i] = d
	}

	for name, st := range stmts {
		switch name {
		case "nDims", "dimList", "dataprec", "nrecords":
		case "simulation":
			h.Simulation = strings.Join(st.strs(), " ")
		case "timeStepNumber":
			v, err := st.int64()
			if err != nil {
				return nil, fmt.Errorf("timeStepNumber: %w", err)
			}
			h.TimeStepNumber = &v
		case "fldList":
			h.FieldList = st.strs()
			if len(h.FieldList) != h.NRecords {
				return nil, fmt.Errorf("fldList: %d names for %d records", len(h.FieldList), h.NRecords)
			}
		case "missingValue":
			vals, err := st.floats()
			if err != nil || len(vals) != 1 {
				return nil, fmt.Errorf("missingValue: expected one number")
			}
			h.MissingValue = &vals[0]
		case "timeInterval":
			if h.TimeInterval, err = st.floats(); err != nil {
				return nil, fmt.Errorf("timeInterval: %w", err)
			}
		default:
			if h.Extra == nil {
				h.Extra = make(map[string]string)
			}
			h.Extra[name] = st.raw
		}
	}

	return h, nil
}
