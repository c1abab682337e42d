package raw

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/robert-malhotra/go-mds/internal/dtype"
	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

// Spec describes how to interpret a payload file.
type Spec struct {
	Type  dtype.Type
	Shape []int
	// Order is the byte order of the file. Nil means big-endian.
	Order binary.ByteOrder
	// Mmap maps the file instead of reading it.
	Mmap bool
}

// Open reads or maps the payload at path according to spec.
func Open(path string, spec Spec) (*Array, error) {
	order := spec.Order
	if order == nil {
		order = binary.BigEndian
	}
	if spec.Mmap {
		return Map(path, spec.Type, spec.Shape, order)
	}
	return Read(path, spec.Type, spec.Shape, order)
}

// Read reads the payload at path into memory and converts it to host byte
// order. The result is independent of the file.
func Read(path string, t dtype.Type, shape []int, order binary.ByteOrder) (*Array, error) {
	f, size, err := openChecked(path, t, shape)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, mdserr.IO(path, fmt.Errorf("reading payload: %w", err))
	}
	dtype.ToNative(t, data, order)

	return &Array{typ: t, order: binary.NativeEndian, shape: cloneShape(shape), data: data}, nil
}

// Map maps the payload at path read-only. The bytes are left as written and
// decoded with order on access.
func Map(path string, t dtype.Type, shape []int, order binary.ByteOrder) (*Array, error) {
	f, size, err := openChecked(path, t, shape)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if size == 0 {
		return &Array{typ: t, order: order, shape: cloneShape(shape), data: []byte{}}, nil
	}

	m, err := mapFile(f, path, int(size))
	if err != nil {
		return nil, mdserr.IO(path, fmt.Errorf("mmap: %w", err))
	}
	if m == nil {
		// No mmap on this platform.
		return Read(path, t, shape, order)
	}
	return &Array{typ: t, order: order, shape: cloneShape(shape), data: m.data, mapping: m}, nil
}

// openChecked opens path and verifies its size matches shape and type.
func openChecked(path string, t dtype.Type, shape []int) (*os.File, int64, error) {
	if !t.Valid() {
		return nil, 0, mdserr.IO(path, fmt.Errorf("invalid element type %v", t))
	}
	for _, s := range shape {
		if s < 0 {
			return nil, 0, mdserr.IO(path, fmt.Errorf("negative extent in shape %v", shape))
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, mdserr.IO(path, mdserr.ErrMissingFile)
		}
		return nil, 0, mdserr.IO(path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, mdserr.IO(path, err)
	}

	want := ByteSize(t, shape)
	if fi.Size() != want {
		f.Close()
		return nil, 0, mdserr.IO(path, fmt.Errorf("%w: shape %v of %v needs %d bytes, file has %d",
			mdserr.ErrSizeMismatch, shape, t, want, fi.Size()))
	}
	return f, want, nil
}
