package dtype

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

// Type is the element type of an MDS payload.
type Type uint8

// Element types.
const (
	Invalid Type = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

var typeNames = [...]string{
	Invalid: "invalid",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
}

// precisions maps dataprec tags to element types. Fortran-style aliases are
// accepted because older model builds write them.
var precisions = map[string]Type{
	"float32":   Float32,
	"float64":   Float64,
	"real*4":    Float32,
	"real*8":    Float64,
	"int8":      Int8,
	"int16":     Int16,
	"int32":     Int32,
	"int64":     Int64,
	"integer*4": Int32,
	"integer*8": Int64,
	"uint8":     Uint8,
	"uint16":    Uint16,
	"uint32":    Uint32,
	"uint64":    Uint64,
}

// ParsePrecision maps a dataprec tag such as 'float32' to its Type.
// Surrounding quotes and whitespace are ignored.
func ParsePrecision(tag string) (Type, error) {
	clean := strings.Trim(strings.TrimSpace(tag), "'\"")
	t, ok := precisions[strings.TrimSpace(clean)]
	if !ok {
		return Invalid, fmt.Errorf("%w: %q", mdserr.ErrUnknownPrecision, tag)
	}
	return t, nil
}

// String returns the canonical dataprec tag.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Size returns the size of a single element in bytes.
func (t Type) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether t is a floating-point type.
func (t Type) IsFloat() bool {
	return t == Float32 || t == Float64
}

// Valid reports whether t is a known element type.
func (t Type) Valid() bool {
	return t > Invalid && t <= Float64
}

// SameOrder reports whether two byte orders decode bytes identically.
// binary.NativeEndian is a distinct type from LittleEndian/BigEndian, so
// plain == comparison is not enough.
func SameOrder(a, b binary.ByteOrder) bool {
	probe := []byte{1, 0}
	return a.Uint16(probe) == b.Uint16(probe)
}

// IsNative reports whether order matches the host byte order.
func IsNative(order binary.ByteOrder) bool {
	return SameOrder(order, binary.NativeEndian)
}

// OrderName returns "big" or "little" for a byte order.
func OrderName(order binary.ByteOrder) string {
	if SameOrder(order, binary.BigEndian) {
		return "big"
	}
	return "little"
}

// ParseOrder maps "big"/">" and "little"/"<" to a byte order.
func ParseOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "big", ">", "be":
		return binary.BigEndian, nil
	case "little", "<", "le":
		return binary.LittleEndian, nil
	case "native", "=":
		return binary.NativeEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", s)
	}
}
