// Package errors defines the errors returned when building and parsing records.
// Every error carries a Kind (usage, lookup or decoding) and a stack trace, and
// can be matched against the ErrUsage, ErrLookup and ErrDecoding sentinels with errors.Is.
package errors

import (
	"fmt"

	cerrors "github.com/cockroachdb/errors"
)

var (
	// ErrUsage matches every usage error.
	ErrUsage = &Error{Kind: KindUsage}

	// ErrLookup matches every lookup error.
	ErrLookup = &Error{Kind: KindLookup}

	// ErrDecoding matches every decoding error.
	ErrDecoding = &Error{Kind: KindDecoding}
)

func newf(kind Kind, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	return cerrors.WithStackDepth(&Error{Kind: kind, Msg: msg}, 2)
}

// Usagef returns a usage error.
func Usagef(format string, args ...any) error {
	return newf(KindUsage, format, args...)
}

// Lookupf returns a lookup error.
func Lookupf(format string, args ...any) error {
	return newf(KindLookup, format, args...)
}

// Decodingf returns a decoding error.
func Decodingf(format string, args ...any) error {
	return newf(KindDecoding, format, args...)
}

// WithHintf attaches a user-facing hint to err.
// Hints are not part of the error message, use Hints to read them.
func WithHintf(err error, format string, args ...any) error {
	return cerrors.WithHintf(err, format, args...)
}

// Hints returns the hints attached to err, one per line.
func Hints(err error) string {
	return cerrors.FlattenHints(err)
}

// WithPath prepends elem to the path of the *Error wrapped by err.
// Errors of other types are returned untouched.
func WithPath(err error, elem string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if cerrors.As(err, &e) {
		e.Path = append([]string{elem}, e.Path...)
	}

	return err
}

// KindOf returns the kind of the *Error wrapped by err, or 0.
func KindOf(err error) Kind {
	var e *Error
	if cerrors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// IsUsage reports whether err is a usage error.
func IsUsage(err error) bool {
	return cerrors.Is(err, ErrUsage)
}

// IsLookup reports whether err is a lookup error.
func IsLookup(err error) bool {
	return cerrors.Is(err, ErrLookup)
}

// IsDecoding reports whether err is a decoding error.
func IsDecoding(err error) bool {
	return cerrors.Is(err, ErrDecoding)
}
