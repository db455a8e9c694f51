package errors_test

import (
	"io"
	"testing"

	"github.com/chaisql/binrec/internal/errors"
	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		msg    string
	}{
		{"usage", errors.Usagef("unknown field %q", "foo"), errors.ErrUsage, `usage error: unknown field "foo"`},
		{"lookup", errors.Lookupf("no codec for %s", "Person"), errors.ErrLookup, "lookup error: no codec for Person"},
		{"decoding", errors.Decodingf("unexpected end of input"), errors.ErrDecoding, "decoding error: unexpected end of input"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.ErrorIs(t, test.err, test.target)
			require.True(t, cerrors.Is(test.err, test.target))
			require.EqualError(t, test.err, test.msg)

			for _, other := range []error{errors.ErrUsage, errors.ErrLookup, errors.ErrDecoding} {
				if other != test.target {
					require.NotErrorIs(t, test.err, other)
				}
			}
		})
	}
}

func TestIsWithForeignErrors(t *testing.T) {
	require.False(t, errors.IsUsage(io.EOF))
	require.False(t, errors.IsDecoding(nil))
	require.Equal(t, errors.Kind(0), errors.KindOf(io.EOF))
}

func TestWithPath(t *testing.T) {
	err := errors.Decodingf("unexpected end of input")
	err = errors.WithPath(err, "name")
	err = errors.WithPath(err, "[2]")
	err = errors.WithPath(err, "pets")

	require.EqualError(t, err, "decoding error at pets[2].name: unexpected end of input")
	require.True(t, errors.IsDecoding(err))
	require.Equal(t, errors.KindDecoding, errors.KindOf(err))

	require.Equal(t, io.EOF, errors.WithPath(io.EOF, "x"))
	require.NoError(t, errors.WithPath(nil, "x"))
}

func TestHints(t *testing.T) {
	err := errors.WithHintf(errors.Usagef("value 128 out of range for int8"), "use %s", "int16")

	require.True(t, errors.IsUsage(err))
	require.Equal(t, "use int16", errors.Hints(err))
}
