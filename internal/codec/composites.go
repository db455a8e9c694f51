package codec

import (
	"math"
	"strconv"

	"github.com/chaisql/binrec/internal/encoding"
	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/types"
)

func elemPath(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func resolveElem(r *Registry, t types.Type) (Codec, error) {
	elem, err := r.Resolve(*t.Elem)
	if err != nil {
		return nil, err
	}

	// an element that can be encoded in zero bytes would let a short
	// input describe an unbounded number of elements
	if elem.MinSize() == 0 {
		return nil, errors.Usagef("%s cannot be used as the element type of %s", elem.Type(), t.Kind)
	}

	return elem, nil
}

// arrayCodec encodes exactly n elements, back to back, without prefix.
type arrayCodec struct {
	t    types.Type
	elem Codec
}

func newArrayCodec(r *Registry, t types.Type) (Codec, error) {
	elem, err := resolveElem(r, t)
	if err != nil {
		return nil, err
	}

	// MinSize must not overflow
	if t.Len > math.MaxInt/elem.MinSize() {
		return nil, errors.Usagef("%s is too large: length %d exceeds %d", t, t.Len, math.MaxInt/elem.MinSize())
	}

	return &arrayCodec{t: t, elem: elem}, nil
}

func (c *arrayCodec) Type() types.Type { return c.t }
func (c *arrayCodec) MinSize() int     { return c.t.Len * c.elem.MinSize() }

func (c *arrayCodec) Build(dst []byte, v any) ([]byte, error) {
	elems, err := toElements(c.t, v)
	if err != nil {
		return nil, err
	}

	if len(elems) != c.t.Len {
		return nil, errors.Usagef("array data length %d and type length %d not matched", len(elems), c.t.Len)
	}

	for i, e := range elems {
		dst, err = c.elem.Build(dst, e)
		if err != nil {
			return nil, errors.WithPath(err, elemPath(i))
		}
	}

	return dst, nil
}

func (c *arrayCodec) ParseWithSize(src []byte) (any, int, error) {
	if need := c.MinSize(); need > len(src) {
		return nil, 0, errors.Decodingf("%s needs at least %d bytes, got %d", c.t, need, len(src))
	}

	elems := make([]any, c.t.Len)

	var off int
	for i := range elems {
		v, n, err := c.elem.ParseWithSize(src[off:])
		if err != nil {
			return nil, 0, errors.WithPath(err, elemPath(i))
		}

		elems[i] = v
		off += n
	}

	return elems, off, nil
}

// vectorCodec encodes a count on four bytes followed by count elements.
type vectorCodec struct {
	t    types.Type
	elem Codec
}

func newVectorCodec(r *Registry, t types.Type) (Codec, error) {
	elem, err := resolveElem(r, t)
	if err != nil {
		return nil, err
	}

	return &vectorCodec{t: t, elem: elem}, nil
}

func (c *vectorCodec) Type() types.Type { return c.t }
func (c *vectorCodec) MinSize() int     { return encoding.Size32 }

func (c *vectorCodec) Build(dst []byte, v any) ([]byte, error) {
	elems, err := toElements(c.t, v)
	if err != nil {
		return nil, err
	}

	if uint64(len(elems)) > math.MaxUint32 {
		return nil, errors.Usagef("vector data must have %d elements or less, got %d", uint64(math.MaxUint32), len(elems))
	}

	dst = encoding.EncodeUint32(dst, uint32(len(elems)))
	for i, e := range elems {
		dst, err = c.elem.Build(dst, e)
		if err != nil {
			return nil, errors.WithPath(err, elemPath(i))
		}
	}

	return dst, nil
}

func (c *vectorCodec) ParseWithSize(src []byte) (any, int, error) {
	count, err := encoding.DecodeUint32(src)
	if err != nil {
		return nil, 0, err
	}

	off := encoding.Size32
	if size := c.elem.MinSize(); int64(count) > int64((len(src)-off)/size) {
		return nil, 0, errors.Decodingf("vector of %d %s needs at least %d bytes each, got %d", count, c.elem.Type(), size, len(src)-off)
	}

	elems := make([]any, count)
	for i := range elems {
		v, n, err := c.elem.ParseWithSize(src[off:])
		if err != nil {
			return nil, 0, errors.WithPath(err, elemPath(i))
		}

		elems[i] = v
		off += n
	}

	return elems, off, nil
}
