package codec

import (
	"math"

	"github.com/chaisql/binrec/internal/encoding"
	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/types"
	"golang.org/x/exp/constraints"
)

// intCodec encodes signed integers of a fixed width.
// Values outside of [lo, hi] are rejected and the error suggests the next wider type.
type intCodec[T constraints.Signed] struct {
	t      types.Type
	size   int
	lo, hi int64
	wider  string
	encode func([]byte, T) []byte
	decode func([]byte) (T, error)
}

func newInt8Codec() *intCodec[int8] {
	return &intCodec[int8]{
		t:      types.Int8,
		size:   encoding.Size8,
		lo:     math.MinInt8,
		hi:     math.MaxInt8,
		wider:  "int16",
		encode: encoding.EncodeInt8,
		decode: encoding.DecodeInt8,
	}
}

func newInt16Codec() *intCodec[int16] {
	return &intCodec[int16]{
		t:      types.Int16,
		size:   encoding.Size16,
		lo:     math.MinInt16,
		hi:     math.MaxInt16,
		wider:  "int32",
		encode: encoding.EncodeInt16,
		decode: encoding.DecodeInt16,
	}
}

func newInt32Codec() *intCodec[int32] {
	return &intCodec[int32]{
		t:      types.Int32,
		size:   encoding.Size32,
		lo:     math.MinInt32,
		hi:     math.MaxInt32,
		wider:  "int64",
		encode: encoding.EncodeInt32,
		decode: encoding.DecodeInt32,
	}
}

func newInt64Codec() *intCodec[int64] {
	return &intCodec[int64]{
		t:      types.Int64,
		size:   encoding.Size64,
		lo:     math.MinInt64,
		hi:     math.MaxInt64,
		encode: encoding.EncodeInt64,
		decode: encoding.DecodeInt64,
	}
}

func (c *intCodec[T]) Type() types.Type { return c.t }
func (c *intCodec[T]) MinSize() int     { return c.size }

func (c *intCodec[T]) Build(dst []byte, v any) ([]byte, error) {
	x, err := toInt64(c.t, v)
	if err != nil {
		return nil, err
	}

	if x < c.lo || x > c.hi {
		err := errors.Usagef("value %d out of range for %s [%d, %d]", x, c.t, c.lo, c.hi)
		if c.wider != "" {
			err = errors.WithHintf(err, "use %s", c.wider)
		}
		return nil, err
	}

	return c.encode(dst, T(x)), nil
}

func (c *intCodec[T]) ParseWithSize(src []byte) (any, int, error) {
	x, err := c.decode(src)
	if err != nil {
		return nil, 0, err
	}

	return x, c.size, nil
}

// floatCodec encodes IEEE 754 floats.
// Finite values whose magnitude exceeds max are rejected.
// float16 and float32 values are parsed as float32, float64 values as float64.
type floatCodec struct {
	t      types.Type
	size   int
	max    float64
	wider  string
	encode func([]byte, float64) []byte
	decode func([]byte) (any, error)
}

func newFloat16Codec() *floatCodec {
	return &floatCodec{
		t:     types.Float16,
		size:  encoding.Size16,
		max:   65504,
		wider: "float32",
		encode: func(dst []byte, x float64) []byte {
			return encoding.EncodeFloat16(dst, float32(x))
		},
		decode: func(b []byte) (any, error) {
			return encoding.DecodeFloat16(b)
		},
	}
}

func newFloat32Codec() *floatCodec {
	return &floatCodec{
		t:     types.Float32,
		size:  encoding.Size32,
		max:   math.MaxFloat32,
		wider: "float64",
		encode: func(dst []byte, x float64) []byte {
			return encoding.EncodeFloat32(dst, float32(x))
		},
		decode: func(b []byte) (any, error) {
			return encoding.DecodeFloat32(b)
		},
	}
}

func newFloat64Codec() *floatCodec {
	return &floatCodec{
		t:      types.Float64,
		size:   encoding.Size64,
		encode: encoding.EncodeFloat64,
		decode: func(b []byte) (any, error) {
			return encoding.DecodeFloat64(b)
		},
	}
}

func (c *floatCodec) Type() types.Type { return c.t }
func (c *floatCodec) MinSize() int     { return c.size }

func (c *floatCodec) Build(dst []byte, v any) ([]byte, error) {
	x, err := toFloat64(c.t, v)
	if err != nil {
		return nil, err
	}

	if c.max > 0 && !math.IsInf(x, 0) && !math.IsNaN(x) && math.Abs(x) > c.max {
		err := errors.Usagef("value %g out of range for %s", x, c.t)
		if c.wider != "" {
			err = errors.WithHintf(err, "use %s", c.wider)
		}
		return nil, err
	}

	return c.encode(dst, x), nil
}

func (c *floatCodec) ParseWithSize(src []byte) (any, int, error) {
	x, err := c.decode(src)
	if err != nil {
		return nil, 0, err
	}

	return x, c.size, nil
}

type boolCodec struct{}

func (boolCodec) Type() types.Type { return types.Bool }
func (boolCodec) MinSize() int     { return encoding.Size8 }

func (boolCodec) Build(dst []byte, v any) ([]byte, error) {
	b, err := toBool(types.Bool, v)
	if err != nil {
		return nil, err
	}

	return encoding.EncodeBool(dst, b), nil
}

func (boolCodec) ParseWithSize(src []byte) (any, int, error) {
	b, err := encoding.DecodeBool(src)
	if err != nil {
		return nil, 0, err
	}

	return b, encoding.Size8, nil
}

// charCodec encodes a single ASCII character in one byte.
type charCodec struct{}

func (charCodec) Type() types.Type { return types.Char }
func (charCodec) MinSize() int     { return encoding.Size8 }

func (charCodec) Build(dst []byte, v any) ([]byte, error) {
	s, err := toString(types.Char, v)
	if err != nil {
		return nil, err
	}

	if len(s) != 1 {
		err := errors.Usagef("char data must be a single character, got %q", s)
		if len(s) > 1 {
			err = errors.WithHintf(err, "use varchar")
		}
		return nil, err
	}

	if s[0] >= 0x80 {
		return nil, errors.Usagef("char data must be an ASCII character, got %q", s)
	}

	return append(dst, s[0]), nil
}

func (charCodec) ParseWithSize(src []byte) (any, int, error) {
	c, err := encoding.DecodeUint8(src)
	if err != nil {
		return nil, 0, err
	}

	if c >= 0x80 {
		return nil, 0, errors.Decodingf("invalid char byte 0x%02x", c)
	}

	return string(rune(c)), encoding.Size8, nil
}

// nullCodec encodes the absence of value as a single zero byte.
type nullCodec struct{}

func (nullCodec) Type() types.Type { return types.Null }
func (nullCodec) MinSize() int     { return encoding.Size8 }

func (nullCodec) Build(dst []byte, v any) ([]byte, error) {
	if v != nil {
		return nil, errors.Usagef("null data must be nil, got %T", v)
	}

	return append(dst, 0), nil
}

func (nullCodec) ParseWithSize(src []byte) (any, int, error) {
	if _, err := encoding.DecodeUint8(src); err != nil {
		return nil, 0, err
	}

	return nil, encoding.Size8, nil
}

// ignoreCodec writes a single zero byte and, when parsing,
// skips everything left in the input.
type ignoreCodec struct{}

func (ignoreCodec) Type() types.Type { return types.Ignore }
func (ignoreCodec) MinSize() int     { return 0 }

func (ignoreCodec) Build(dst []byte, _ any) ([]byte, error) {
	return append(dst, 0), nil
}

func (ignoreCodec) ParseWithSize(src []byte) (any, int, error) {
	return nil, len(src), nil
}
