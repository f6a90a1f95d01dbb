package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrEmailTaken is returned when an account already uses the email.
var ErrEmailTaken = errors.New("email already registered")

// Account is a registered user of the service.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PhotoURL     string    `json:"photoURL,omitempty"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NormalizeEmail lowercases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
