package dtype

// Conversion Strategy
//
// Owned payloads are converted to host order once, right after the read, so
// that later typed access can use a direct view of the bytes. Mapped payloads
// cannot be rewritten (the mapping is read-only) and are decoded element by
// element with the run's byte order on every access.

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"unsafe"
)

// ToNative converts data in place from order to host byte order.
func ToNative(t Type, data []byte, order binary.ByteOrder) {
	if IsNative(order) {
		return
	}
	Swap(t, data)
}

// Swap reverses the bytes of every element of data in place.
func Swap(t Type, data []byte) {
	switch t.Size() {
	case 2:
		for i := 0; i+2 <= len(data); i += 2 {
			binary.LittleEndian.PutUint16(data[i:], bits.ReverseBytes16(binary.LittleEndian.Uint16(data[i:])))
		}
	case 4:
		for i := 0; i+4 <= len(data); i += 4 {
			binary.LittleEndian.PutUint32(data[i:], bits.ReverseBytes32(binary.LittleEndian.Uint32(data[i:])))
		}
	case 8:
		for i := 0; i+8 <= len(data); i += 8 {
			binary.LittleEndian.PutUint64(data[i:], bits.ReverseBytes64(binary.LittleEndian.Uint64(data[i:])))
		}
	}
}

// Float64At decodes element i of data as float64.
func Float64At(t Type, order binary.ByteOrder, data []byte, i int) float64 {
	off := i * t.Size()
	b := data[off : off+t.Size()]
	switch t {
	case Float32:
		return float64(math.Float32frombits(order.Uint32(b)))
	case Float64:
		return math.Float64frombits(order.Uint64(b))
	case Int8:
		return float64(int8(b[0]))
	case Uint8:
		return float64(b[0])
	case Int16:
		return float64(int16(order.Uint16(b)))
	case Uint16:
		return float64(order.Uint16(b))
	case Int32:
		return float64(int32(order.Uint32(b)))
	case Uint32:
		return float64(order.Uint32(b))
	case Int64:
		return float64(int64(order.Uint64(b)))
	case Uint64:
		return float64(order.Uint64(b))
	default:
		return math.NaN()
	}
}

// Int64At decodes element i of data as int64. Floating-point values are
// truncated toward zero.
func Int64At(t Type, order binary.ByteOrder, data []byte, i int) int64 {
	off := i * t.Size()
	b := data[off : off+t.Size()]
	switch t {
	case Int8:
		return int64(int8(b[0]))
	case Uint8:
		return int64(b[0])
	case Int16:
		return int64(int16(order.Uint16(b)))
	case Uint16:
		return int64(order.Uint16(b))
	case Int32:
		return int64(int32(order.Uint32(b)))
	case Uint32:
		return int64(order.Uint32(b))
	case Int64:
		return int64(order.Uint64(b))
	case Uint64:
		return int64(order.Uint64(b))
	default:
		return int64(Float64At(t, order, data, i))
	}
}

// DecodeFloat64 decodes every element of data into dst, which must hold
// len(data)/t.Size() values.
func DecodeFloat64(t Type, order binary.ByteOrder, data []byte, dst []float64) error {
	size := t.Size()
	if size == 0 {
		return fmt.Errorf("unsupported element type: %v", t)
	}
	n := len(data) / size
	if len(dst) < n {
		return fmt.Errorf("destination too small: need %d, have %d", n, len(dst))
	}

	// Fast path for the common float types in host order.
	if IsNative(order) {
		switch t {
		case Float64:
			if src, ok := View[float64](data[:n*size]); ok {
				copy(dst, src)
				return nil
			}
		case Float32:
			if src, ok := View[float32](data[:n*size]); ok {
				for i, v := range src {
					dst[i] = float64(v)
				}
				return nil
			}
		}
	}

	for i := 0; i < n; i++ {
		dst[i] = Float64At(t, order, data, i)
	}
	return nil
}

// EncodeFloat64 encodes values as elements of type t in the given order.
func EncodeFloat64(t Type, order binary.ByteOrder, values []float64) ([]byte, error) {
	size := t.Size()
	if size == 0 {
		return nil, fmt.Errorf("unsupported element type: %v", t)
	}
	buf := make([]byte, len(values)*size)
	for i, v := range values {
		b := buf[i*size : (i+1)*size]
		switch t {
		case Float32:
			order.PutUint32(b, math.Float32bits(float32(v)))
		case Float64:
			order.PutUint64(b, math.Float64bits(v))
		case Int8, Uint8:
			b[0] = byte(int64(v))
		case Int16, Uint16:
			order.PutUint16(b, uint16(int64(v)))
		case Int32, Uint32:
			order.PutUint32(b, uint32(int64(v)))
		case Int64, Uint64:
			order.PutUint64(b, uint64(int64(v)))
		}
	}
	return buf, nil
}

// EncodeInt64 encodes integer values as elements of type t in the given order.
func EncodeInt64(t Type, order binary.ByteOrder, values []int64) ([]byte, error) {
	if t.IsFloat() {
		f := make([]float64, len(values))
		for i, v := range values {
			f[i] = float64(v)
		}
		return EncodeFloat64(t, order, f)
	}
	size := t.Size()
	if size == 0 {
		return nil, fmt.Errorf("unsupported element type: %v", t)
	}
	buf := make([]byte, len(values)*size)
	for i, v := range values {
		b := buf[i*size : (i+1)*size]
		switch size {
		case 1:
			b[0] = byte(v)
		case 2:
			order.PutUint16(b, uint16(v))
		case 4:
			order.PutUint32(b, uint32(v))
		case 8:
			order.PutUint64(b, uint64(v))
		}
	}
	return buf, nil
}

// aligned reports whether data starts on a boundary suitable for a direct
// view of elements of the given size.
func aligned(data []byte, size int) bool {
	if len(data) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(data)))%uintptr(size) == 0
}

// View returns data reinterpreted as a slice of T without copying. ok is
// false when data is misaligned for T or its length is not a multiple of
// T's size. The caller is responsible for byte order.
func View[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64](data []byte) (out []T, ok bool) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(data)%size != 0 || !aligned(data, size) {
		return nil, false
	}
	if len(data) == 0 {
		return []T{}, true
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(data))), len(data)/size), true
}
