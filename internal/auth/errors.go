package auth

import (
	"errors"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// ErrUnauthenticated marks a missing, invalid, expired or revoked session.
var ErrUnauthenticated = errors.New("unauthenticated")

// Error is an auth failure with a message meant for the user. The wrapped
// sentinel decides the HTTP status.
type Error struct {
	Title   string
	Message string
	err     error
}

func (e *Error) Error() string { return e.Title + ": " + e.Message }

func (e *Error) Unwrap() error { return e.err }

func newError(kind error, title, message string) *Error {
	return &Error{Title: title, Message: message, err: kind}
}

var (
	errBadCredentials = newError(ErrUnauthenticated, "Sign in failed", "Invalid email or password.")
	errSessionInvalid = newError(ErrUnauthenticated, "Session expired", "Please sign in again.")
	errEmailTaken     = newError(domain.ErrEmailTaken, "Sign up failed", "An account with this email already exists.")
	errInvalidEmail   = newError(domain.ErrInvalid, "Invalid email", "Please enter a valid email address.")
	errWeakPassword   = newError(domain.ErrInvalid, "Weak password", "Password should be at least 6 characters.")
	errUnknownEmail   = newError(domain.ErrNotFound, "Reset failed", "No account found for this email.")
	errResetInvalid   = newError(domain.ErrInvalid, "Reset failed", "This reset link is invalid or has expired.")
)
