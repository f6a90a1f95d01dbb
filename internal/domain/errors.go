package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record addressed by id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid marks caller input a store or handler refuses.
	ErrInvalid = errors.New("invalid input")

	// ErrContention is returned when an atomic toggle could not commit
	// within the retry budget. Nothing was written.
	ErrContention = errors.New("too much contention, try again")

	// ErrAlreadySeeded is returned when starter data was already written
	// for the user.
	ErrAlreadySeeded = errors.New("account already seeded")
)

// Invalidf builds an ErrInvalid carrying a human-readable reason.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrNotFound naming the missing record.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
