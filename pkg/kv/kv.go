// Package kv defines the key-value persistence backends the snapshot store writes through.
//
// Every backend speaks the same three-call protocol: Get, Set, Remove. A Set that does not
// fit the backend's quota fails with an error wrapping ErrCapacityExceeded; callers treat that
// one failure as expected and recoverable.
package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("kv: key not found")

	// ErrCapacityExceeded is wrapped by Set when the value does not fit the backend.
	ErrCapacityExceeded = errors.New("kv: capacity exceeded")
)

// Backend is a synchronous key-value store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// IsCapacityExceeded reports whether err means the write did not fit.
func IsCapacityExceeded(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}

// IsNotFound reports whether err means the key is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// capacityError wraps a backend-native quota failure so errors.Is matches ErrCapacityExceeded
// while the original cause stays visible in logs.
type capacityError struct {
	backend string
	key     string
	cause   error
}

func (e *capacityError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v: %v", e.backend, e.key, ErrCapacityExceeded, e.cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.backend, e.key, ErrCapacityExceeded)
}

func (e *capacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

func (e *capacityError) Unwrap() error {
	return e.cause
}

func capacityExceeded(backend, key string, cause error) error {
	return &capacityError{backend: backend, key: key, cause: cause}
}
