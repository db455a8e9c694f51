package kv

import "github.com/cockroachdb/errors"

// Common errors returned by the store.
var (
	// ErrKeyNotFound is returned when the targeted key doesn't exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrStoreClosed is returned when using a store after calling Close.
	ErrStoreClosed = errors.New("store is closed")
)
