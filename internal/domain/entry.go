package domain

import (
	"strings"
	"time"
)

// Entry is one dated journal text record owned by a single user.
//
// At most one entry per calendar date is a caller convention.
// Stores never enforce it.
type Entry struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the store on creation and never changes.
	ID string `json:"id"`

	// Date is the calendar day the entry belongs to (YYYY-MM-DD).
	// It is fixed at creation; later saves cannot move an entry.
	Date string `json:"date"`

	// ─────────────────────────────
	// Content (replaced on every save)
	// ─────────────────────────────

	Content string `json:"content"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is an optional RFC3339 timestamp.
	// Display ordering falls back to Date when it is empty.
	CreatedAt string `json:"createdAt,omitempty"`
}

// DisplayTime is the instant used to order entries for display:
// CreatedAt when it parses, otherwise midnight UTC of Date.
func (e Entry) DisplayTime() time.Time {
	if e.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, e.CreatedAt); err == nil {
			return t
		}
	}
	if t, err := ParseDate(e.Date); err == nil {
		return t
	}
	return time.Time{}
}

// HasContent reports whether the entry carries something worth saving.
func (e Entry) HasContent() bool {
	return strings.TrimSpace(e.Content) != ""
}

// ValidateNewEntry checks the fields a caller must supply to create an entry.
func ValidateNewEntry(e Entry) error {
	if err := ValidateDate(e.Date); err != nil {
		return err
	}
	if e.CreatedAt != "" {
		if _, err := time.Parse(time.RFC3339Nano, e.CreatedAt); err != nil {
			return Invalidf("createdAt must be an RFC3339 timestamp, got %q", e.CreatedAt)
		}
	}
	return nil
}
