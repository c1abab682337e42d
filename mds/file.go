package mds

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/robert-malhotra/go-mds/internal/dtype"
	"github.com/robert-malhotra/go-mds/internal/mdserr"
	"github.com/robert-malhotra/go-mds/internal/meta"
	"github.com/robert-malhotra/go-mds/internal/raw"
)

// Array is a typed N-dimensional buffer, owned or memory mapped. Mapped
// arrays are read-only and must be closed.
type Array = raw.Array

// ElementType is the numeric type of a payload's elements.
type ElementType = dtype.Type

// Element types.
const (
	Int8    = dtype.Int8
	Int16   = dtype.Int16
	Int32   = dtype.Int32
	Int64   = dtype.Int64
	Uint8   = dtype.Uint8
	Uint16  = dtype.Uint16
	Uint32  = dtype.Uint32
	Uint64  = dtype.Uint64
	Float32 = dtype.Float32
	Float64 = dtype.Float64
)

// DataExt is the payload file extension.
const DataExt = ".data"

// Field is one record of a payload file.
type Field struct {
	Name      string
	Array     *Array
	Iteration *int64
}

// FileBase returns the path of base at iteration iter without extension:
// base itself, or base.<10-digit iteration>.
func FileBase(base string, iter *int64) string {
	if iter == nil {
		return base
	}
	return fmt.Sprintf("%s.%010d", base, *iter)
}

// ReadOne reads a single-record file. base is the path without iteration
// suffix or extension. It fails with ErrMultiRecord when the file holds
// more than one record.
func ReadOne(base string, opts ...Option) (*Array, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	p := FileBase(base, o.iter)
	h, err := readHeader(p, o)
	if err != nil {
		return nil, err
	}
	if h.NRecords > 1 {
		return nil, fmt.Errorf("%s: %w (%d records)", p+meta.Ext, ErrMultiRecord, h.NRecords)
	}
	return readPayload(p, h, o)
}

// ReadMany reads every record of a file, keyed by record name. A
// single-record file yields one entry named after the file.
func ReadMany(base string, opts ...Option) (map[string]*Array, error) {
	fields, err := ReadFields(base, opts...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Array, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Array
	}
	return out, nil
}

// ReadFields is ReadMany with the records in file order.
func ReadFields(base string, opts ...Option) ([]Field, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return readFields(base, o)
}

func readFields(base string, o *options) ([]Field, error) {
	p := FileBase(base, o.iter)
	h, err := readHeader(p, o)
	if err != nil {
		return nil, err
	}
	arr, err := readPayload(p, h, o)
	if err != nil {
		return nil, err
	}

	var iter *int64
	if o.iter != nil {
		it := *o.iter
		iter = &it
	}
	name := filepath.Base(base)
	if h.NRecords <= 1 {
		return []Field{{Name: name, Array: arr, Iteration: iter}}, nil
	}

	// Records hold their own references; the parent is closed on return.
	defer arr.Close()
	names := fieldNames(name, h)
	fields := make([]Field, 0, len(names))
	for i, n := range names {
		rec, err := arr.Record(i)
		if err != nil {
			closeFields(fields)
			return nil, mdserr.IO(p+DataExt, err)
		}
		fields = append(fields, Field{Name: n, Array: rec, Iteration: iter})
	}
	return fields, nil
}

// fieldNames names the records of a multi-record file: the static table,
// then fldList, then <base>_<index>.
func fieldNames(base string, h *meta.Header) []string {
	if names, ok := recordNames[base]; ok && len(names) == h.NRecords {
		return names
	}
	if len(h.FieldList) == h.NRecords {
		return h.FieldList
	}
	names := make([]string, h.NRecords)
	for i := range names {
		names[i] = fmt.Sprintf("%s_%d", base, i)
	}
	return names
}

// readHeader parses p.meta. When the metadata file is missing and both a
// shape and an element type were given, a single-record header is built
// from them instead.
func readHeader(p string, o *options) (*meta.Header, error) {
	h, err := meta.ParseFile(p + meta.Ext)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrMissingFile) || o.shape == nil || !o.typ.Valid() {
		return nil, err
	}

	o.logger.Debug("no metadata, using given shape",
		zapPath(p+meta.Ext), zapShape(o.shape))
	h = &meta.Header{
		BaseName: filepath.Base(p),
		NDims:    len(o.shape),
		DataPrec: o.typ,
		NRecords: 1,
	}
	for i := len(o.shape) - 1; i >= 0; i-- {
		h.DimList = append(h.DimList, meta.Dim{Global: o.shape[i], Start: 1, End: o.shape[i]})
	}
	return h, nil
}

func readPayload(p string, h *meta.Header, o *options) (*Array, error) {
	return raw.Open(p+DataExt, raw.Spec{
		Type:  h.DataPrec,
		Shape: h.Shape(),
		Order: o.order,
		Mmap:  o.mmap,
	})
}

func closeFields(fields []Field) {
	for _, f := range fields {
		f.Array.Close()
	}
}
