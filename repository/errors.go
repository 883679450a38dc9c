package repository

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
	ErrDuplicate = errors.New("property already exists")

	// ErrInvalidInput marks a request the repository refuses to run.
	ErrInvalidInput = errors.New("invalid input")
)

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return ErrInvalidInput }

func invalidInput(msg string) error {
	return &inputError{msg: msg}
}

// ErrNoFilter is returned by BodyFilter when the request sets no criteria.
var ErrNoFilter = invalidInput("At least one filter parameter is required")
