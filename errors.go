package binrec

import (
	"github.com/chaisql/binrec/internal/errors"
	"github.com/chaisql/binrec/internal/kv"
)

var (
	// ErrUsage matches usage errors with errors.Is.
	ErrUsage = errors.ErrUsage
	// ErrLookup matches lookup errors with errors.Is.
	ErrLookup = errors.ErrLookup
	// ErrDecoding matches decoding errors with errors.Is.
	ErrDecoding = errors.ErrDecoding

	// ErrRecordNotFound is returned when no record is stored under a given id.
	ErrRecordNotFound = kv.ErrKeyNotFound
)

// IsUsageError reports whether err was caused by an invalid value or declaration.
func IsUsageError(err error) bool {
	return errors.IsUsage(err)
}

// IsLookupError reports whether err was caused by a type without codec.
func IsLookupError(err error) bool {
	return errors.IsLookup(err)
}

// IsDecodingError reports whether err was caused by malformed or truncated input.
func IsDecodingError(err error) bool {
	return errors.IsDecoding(err)
}

// Hints returns the hints attached to err, one per line.
func Hints(err error) string {
	return errors.Hints(err)
}
