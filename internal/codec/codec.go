// Package codec turns values into bytes and back, one wire type at a time.
//
// Every wire type is served by a Codec, obtained from a Registry.
// Codecs are stateless and can be shared between goroutines.
// Composite codecs, like arrays and vectors, resolve the codec of their
// elements through the same Registry, which allows arbitrary nesting.
package codec

import (
	"github.com/chaisql/binrec/internal/types"
)

// A Codec encodes and decodes the values of one wire type.
type Codec interface {
	// Type returns the descriptor the codec is bound to.
	Type() types.Type

	// Build appends the encoding of v to dst and returns the extended buffer.
	// On error, the returned buffer is nil and the content of dst past its length is undefined.
	Build(dst []byte, v any) ([]byte, error)

	// ParseWithSize decodes a value from the start of src and returns it
	// along with the number of bytes it occupied.
	ParseWithSize(src []byte) (any, int, error)

	// MinSize returns the smallest number of bytes an encoded value can occupy.
	MinSize() int
}

// Build returns the encoding of v.
func Build(c Codec, v any) ([]byte, error) {
	return c.Build(nil, v)
}

// Parse decodes a value from the start of src.
func Parse(c Codec, src []byte) (any, error) {
	v, _, err := c.ParseWithSize(src)
	return v, err
}
