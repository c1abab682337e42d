// Package dtype provides MDS element types and byte-order aware conversion.
//
// MDS payloads are headerless: the element type comes from the `dataprec`
// tag of the sibling .meta file and the byte order is a property of the run
// (big-endian unless the model was built otherwise). This package bridges
// those tags and raw bytes to Go values.
//
// # Type Mapping
//
//	dataprec tag          | Type    | Go type
//	----------------------|---------|--------
//	float32, real*4       | Float32 | float32
//	float64, real*8       | Float64 | float64
//	int8 .. int64         | IntN    | intN
//	integer*4, integer*8  | Int32/64| int32/int64
//	uint8 .. uint64       | UintN   | uintN
//
// # Key Functions
//
//   - [ParsePrecision]: Maps a dataprec tag to a [Type]
//   - [ToNative]: Converts a buffer in place to host byte order
//   - [Float64At], [Int64At]: Decode a single element
//   - [DecodeFloat64]: Decode a whole buffer to float64
//   - [EncodeFloat64], [EncodeInt64]: Build a buffer from Go values
package dtype
