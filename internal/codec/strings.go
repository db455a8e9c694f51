package codec

import (
	"math"
	"unicode/utf8"

	"github.com/chaisql/binrec/internal/encoding"
	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/types"
)

func checkUTF8(t types.Type, s string) error {
	if !utf8.ValidString(s) {
		return errors.Usagef("%s data must be valid UTF-8", t)
	}

	return nil
}

// varcharCodec encodes texts of up to 255 bytes, prefixed by their length on one byte.
type varcharCodec struct{}

func (varcharCodec) Type() types.Type { return types.Varchar }
func (varcharCodec) MinSize() int     { return encoding.Size8 }

func (varcharCodec) Build(dst []byte, v any) ([]byte, error) {
	s, err := toString(types.Varchar, v)
	if err != nil {
		return nil, err
	}

	if len(s) > math.MaxUint8 {
		return nil, errors.WithHintf(
			errors.Usagef("varchar data must be 255 bytes or less, got %d", len(s)),
			"use string",
		)
	}

	if err := checkUTF8(types.Varchar, s); err != nil {
		return nil, err
	}

	return encoding.EncodeText8(dst, s), nil
}

func (varcharCodec) ParseWithSize(src []byte) (any, int, error) {
	s, n, err := encoding.DecodeText8(src)
	if err != nil {
		return nil, 0, err
	}

	return s, n, nil
}

// stringCodec encodes texts prefixed by their length on four bytes.
type stringCodec struct{}

func (stringCodec) Type() types.Type { return types.String }
func (stringCodec) MinSize() int     { return encoding.Size32 }

func (stringCodec) Build(dst []byte, v any) ([]byte, error) {
	s, err := toString(types.String, v)
	if err != nil {
		return nil, err
	}

	if uint64(len(s)) > math.MaxUint32 {
		return nil, errors.Usagef("string data must be %d bytes or less, got %d", uint64(math.MaxUint32), len(s))
	}

	if err := checkUTF8(types.String, s); err != nil {
		return nil, err
	}

	return encoding.EncodeText32(dst, s), nil
}

func (stringCodec) ParseWithSize(src []byte) (any, int, error) {
	s, n, err := encoding.DecodeText32(src)
	if err != nil {
		return nil, 0, err
	}

	return s, n, nil
}

// fixedStringCodec encodes texts of exactly n bytes, without prefix.
type fixedStringCodec struct {
	t types.Type
}

func newFixedStringCodec(_ *Registry, t types.Type) (Codec, error) {
	return &fixedStringCodec{t: t}, nil
}

func (c *fixedStringCodec) Type() types.Type { return c.t }
func (c *fixedStringCodec) MinSize() int     { return c.t.Len }

func (c *fixedStringCodec) Build(dst []byte, v any) ([]byte, error) {
	s, err := toString(c.t, v)
	if err != nil {
		return nil, err
	}

	if len(s) != c.t.Len {
		return nil, errors.Usagef("fixedstring data length %d and type length %d not matched", len(s), c.t.Len)
	}

	if err := checkUTF8(c.t, s); err != nil {
		return nil, err
	}

	return append(dst, s...), nil
}

func (c *fixedStringCodec) ParseWithSize(src []byte) (any, int, error) {
	s, err := encoding.DecodeRaw(src, c.t.Len)
	if err != nil {
		return nil, 0, err
	}

	return s, c.t.Len, nil
}
