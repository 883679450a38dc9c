package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks caller input that cannot be turned into a range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrStoreUnavailable marks a failed query against the record store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

type paramError struct {
	msg string
}

func (e *paramError) Error() string { return e.msg }

func (e *paramError) Unwrap() error { return ErrInvalidParameter }

func invalidParam(msg string) error {
	return &paramError{msg: msg}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
