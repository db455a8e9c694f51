// Package encoding contains the fixed-width primitives the codecs are built upon.
// Every Encode function appends to dst and returns the extended slice.
// Every Decode function reads from the start of b and fails with a decoding error
// if b is too short.
// Multi-byte values are always little-endian.
package encoding

import (
	"encoding/binary"
	"math"

	"github.com/chaisql/binrec/internal/errors"
	"github.com/x448/float16"
)

// Widths of the fixed-size primitives, in bytes.
const (
	Size8  = 1
	Size16 = 2
	Size32 = 4
	Size64 = 8
)

func need(b []byte, n int) error {
	if len(b) < n {
		return errors.Decodingf("unexpected end of input: need %d bytes, got %d", n, len(b))
	}

	return nil
}

func EncodeUint8(dst []byte, n uint8) []byte {
	return append(dst, n)
}

func EncodeUint16(dst []byte, n uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, n)
}

func EncodeUint32(dst []byte, n uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, n)
}

func EncodeUint64(dst []byte, n uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, n)
}

func EncodeInt8(dst []byte, n int8) []byte {
	return EncodeUint8(dst, uint8(n))
}

func EncodeInt16(dst []byte, n int16) []byte {
	return EncodeUint16(dst, uint16(n))
}

func EncodeInt32(dst []byte, n int32) []byte {
	return EncodeUint32(dst, uint32(n))
}

func EncodeInt64(dst []byte, n int64) []byte {
	return EncodeUint64(dst, uint64(n))
}

// EncodeFloat16 rounds x to the nearest IEEE-754 half precision value.
func EncodeFloat16(dst []byte, x float32) []byte {
	return EncodeUint16(dst, float16.Fromfloat32(x).Bits())
}

func EncodeFloat32(dst []byte, x float32) []byte {
	return EncodeUint32(dst, math.Float32bits(x))
}

func EncodeFloat64(dst []byte, x float64) []byte {
	return EncodeUint64(dst, math.Float64bits(x))
}

func EncodeBool(dst []byte, x bool) []byte {
	if x {
		return append(dst, 1)
	}

	return append(dst, 0)
}

func DecodeUint8(b []byte) (uint8, error) {
	if err := need(b, Size8); err != nil {
		return 0, err
	}

	return b[0], nil
}

func DecodeUint16(b []byte) (uint16, error) {
	if err := need(b, Size16); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

func DecodeUint32(b []byte) (uint32, error) {
	if err := need(b, Size32); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

func DecodeUint64(b []byte) (uint64, error) {
	if err := need(b, Size64); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

func DecodeInt8(b []byte) (int8, error) {
	x, err := DecodeUint8(b)
	return int8(x), err
}

func DecodeInt16(b []byte) (int16, error) {
	x, err := DecodeUint16(b)
	return int16(x), err
}

func DecodeInt32(b []byte) (int32, error) {
	x, err := DecodeUint32(b)
	return int32(x), err
}

func DecodeInt64(b []byte) (int64, error) {
	x, err := DecodeUint64(b)
	return int64(x), err
}

func DecodeFloat16(b []byte) (float32, error) {
	x, err := DecodeUint16(b)
	if err != nil {
		return 0, err
	}

	return float16.Frombits(x).Float32(), nil
}

func DecodeFloat32(b []byte) (float32, error) {
	x, err := DecodeUint32(b)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(x), nil
}

func DecodeFloat64(b []byte) (float64, error) {
	x, err := DecodeUint64(b)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(x), nil
}

// DecodeBool only accepts 0 and 1.
func DecodeBool(b []byte) (bool, error) {
	x, err := DecodeUint8(b)
	if err != nil {
		return false, err
	}

	switch x {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}

	return false, errors.Decodingf("invalid boolean byte 0x%02x", x)
}
