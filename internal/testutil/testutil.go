// Package testutil provides fixtures for tests that need MDS run directories.
//
// Run directories are synthesized into t.TempDir() rather than extracted
// from archives: a Field writes one .meta/.data pair, WriteGrid writes the
// full set of grid files, and the Experiment presets reproduce the layout
// of the model's verification runs at their real sizes.
package testutil

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/robert-malhotra/go-mds/internal/dtype"
	"github.com/robert-malhotra/go-mds/internal/meta"
)

// NoIter marks a field written without an iteration suffix.
const NoIter int64 = -1

// Field describes one .meta/.data pair to write.
type Field struct {
	Name string
	Iter int64 // NoIter for grid files
	Type dtype.Type
	// Shape is the row-major shape of one record.
	Shape []int
	// Records names the records of a multi-record file and is written as
	// fldList. Leave empty for single-record files.
	Records []string
	// Values holds every element of every record. Nil fills element n with
	// Offset + n.
	Values []float64
	Offset float64
	Order  binary.ByteOrder // nil means big-endian
	// NoFieldList writes a multi-record file without fldList.
	NoFieldList bool
}

// Path returns the file path of f in dir without extension.
func (f Field) Path(dir string) string {
	name := f.Name
	if f.Iter != NoIter {
		name = fmt.Sprintf("%s.%010d", f.Name, f.Iter)
	}
	return filepath.Join(dir, name)
}

// WriteField writes f's .meta and .data files into dir.
func WriteField(t testing.TB, dir string, f Field) {
	t.Helper()
	if err := writeField(dir, f); err != nil {
		t.Fatalf("writing %s: %v", f.Name, err)
	}
}

func writeField(dir string, f Field) error {
	if f.Type == dtype.Invalid {
		f.Type = dtype.Float32
	}
	order := f.Order
	if order == nil {
		order = binary.BigEndian
	}
	nrec := max(len(f.Records), 1)

	n := nrec
	for _, s := range f.Shape {
		n *= s
	}
	values := f.Values
	if values == nil {
		values = make([]float64, n)
		for i := range values {
			values[i] = f.Offset + float64(i)
		}
	}
	if len(values) != n {
		return fmt.Errorf("%d values for %d elements", len(values), n)
	}

	h := &meta.Header{
		Simulation: "synthetic",
		NDims:      len(f.Shape),
		DataPrec:   f.Type,
		NRecords:   nrec,
	}
	for i := len(f.Shape) - 1; i >= 0; i-- {
		h.DimList = append(h.DimList, meta.Dim{Global: f.Shape[i], Start: 1, End: f.Shape[i]})
	}
	if f.Iter != NoIter {
		step := f.Iter
		h.TimeStepNumber = &step
	}
	if len(f.Records) > 0 && !f.NoFieldList {
		h.FieldList = f.Records
	}

	data, err := dtype.EncodeFloat64(f.Type, order, values)
	if err != nil {
		return err
	}
	base := f.Path(dir)
	if err := meta.WriteFile(base+meta.Ext, h); err != nil {
		return err
	}
	return os.WriteFile(base+".data", data, 0o644)
}

// WriteData writes only a .data file holding values, for tests that
// exercise a missing .meta.
func WriteData(t testing.TB, path string, typ dtype.Type, order binary.ByteOrder, values []float64) {
	t.Helper()
	data, err := dtype.EncodeFloat64(typ, order, values)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// WriteFile writes text to dir/name.
func WriteFile(t testing.TB, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
