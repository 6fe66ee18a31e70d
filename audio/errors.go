package audio

import "errors"

var (
	// ErrResourceExhausted is returned when the pool has no free blocks.
	// Callers recover by dropping the current frame; the stream continues.
	ErrResourceExhausted = errors.New("pool exhausted")

	// ErrInvalidConfig is returned for configuration rejected at construction.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotReady is returned when a result is queried before any
	// computation has completed.
	ErrNotReady = errors.New("not ready")

	// ErrNotSupported is returned when a feature disabled at construction is
	// queried.
	ErrNotSupported = errors.New("not supported")

	// ErrCapacityExceeded is returned when a bounded registration (nodes,
	// channels, splitter outputs) is full.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidState is returned if a lifecycle method cannot be executed
	// at this moment.
	ErrInvalidState = errors.New("invalid state")
)
