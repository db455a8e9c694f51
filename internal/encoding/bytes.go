package encoding

import (
	"math"
	"unicode/utf8"

	"github.com/chaisql/binrec/internal/errors"
)

// EncodeText8 encodes x prefixed by its length on one byte.
// It panics if x is longer than 255 bytes, callers must check it first.
func EncodeText8(dst []byte, x string) []byte {
	if len(x) > math.MaxUint8 {
		panic("text too long for a one byte prefix")
	}

	dst = EncodeUint8(dst, uint8(len(x)))
	return append(dst, x...)
}

// DecodeText8 decodes a text prefixed by its length on one byte
// and returns the number of bytes read, prefix included.
func DecodeText8(b []byte) (string, int, error) {
	l, err := DecodeUint8(b)
	if err != nil {
		return "", 0, err
	}

	x, err := decodeUTF8(b[Size8:], int(l))
	if err != nil {
		return "", 0, err
	}

	return x, Size8 + int(l), nil
}

// EncodeText32 encodes x prefixed by its length on four bytes.
// It panics if x is longer than math.MaxUint32 bytes, callers must check it first.
func EncodeText32(dst []byte, x string) []byte {
	if uint64(len(x)) > math.MaxUint32 {
		panic("text too long for a four bytes prefix")
	}

	dst = EncodeUint32(dst, uint32(len(x)))
	return append(dst, x...)
}

// DecodeText32 decodes a text prefixed by its length on four bytes
// and returns the number of bytes read, prefix included.
func DecodeText32(b []byte) (string, int, error) {
	l, err := DecodeUint32(b)
	if err != nil {
		return "", 0, err
	}

	if uint64(l) > uint64(len(b)-Size32) {
		return "", 0, errors.Decodingf("text length %d exceeds the %d remaining bytes", l, len(b)-Size32)
	}

	x, err := decodeUTF8(b[Size32:], int(l))
	if err != nil {
		return "", 0, err
	}

	return x, Size32 + int(l), nil
}

// DecodeRaw returns the first n bytes of b as a string, without validation.
func DecodeRaw(b []byte, n int) (string, error) {
	if err := need(b, n); err != nil {
		return "", err
	}

	return string(b[:n]), nil
}

func decodeUTF8(b []byte, n int) (string, error) {
	if err := need(b, n); err != nil {
		return "", err
	}

	if !utf8.Valid(b[:n]) {
		return "", errors.Decodingf("invalid UTF-8 text")
	}

	return string(b[:n]), nil
}
