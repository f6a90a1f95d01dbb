// Package store defines the per-user persistence contracts shared by every
// backend (Redis, SQLite and in-memory).
package store

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// DefaultMaxToggleRetries bounds the optimistic retry loop of ToggleHabit.
const DefaultMaxToggleRetries = 10

// Entries is the journal entry store.
type Entries interface {
	ListEntries(ctx context.Context, userID string) ([]domain.Entry, error)
	// SaveEntry updates the content of entry.ID when set, otherwise creates
	// a new record. Date, CreatedAt and ID of an existing record never change.
	SaveEntry(ctx context.Context, userID string, entry domain.Entry) (domain.Entry, error)
	DeleteEntry(ctx context.Context, userID, entryID string) error
}

// Habits is the habit definition store.
type Habits interface {
	ListHabits(ctx context.Context, userID string) ([]domain.Habit, error)
	AddHabit(ctx context.Context, userID string, in domain.HabitInput) (domain.Habit, error)
	UpdateHabit(ctx context.Context, userID string, patch domain.HabitPatch) (domain.Habit, error)
	// DeleteHabit removes the definition only. Log memberships stay.
	DeleteHabit(ctx context.Context, userID, habitID string) error
}

// HabitLogs is the per-date completion store.
type HabitLogs interface {
	ListLogs(ctx context.Context, userID string) (domain.HabitLog, error)
	// ToggleHabit atomically flips habitID in the set for date and returns
	// the full mapping read after the commit.
	ToggleHabit(ctx context.Context, userID, habitID, date string) (domain.HabitLog, error)
}

// Seeder writes starter data once per user.
type Seeder interface {
	// SeedInitialData writes everything or nothing. It returns
	// domain.ErrAlreadySeeded when the user's seeded marker exists.
	SeedInitialData(ctx context.Context, userID string, seed domain.Seed) error
}

// Accounts persists auth accounts and token bookkeeping.
type Accounts interface {
	CreateAccount(ctx context.Context, acc domain.Account) error
	AccountByID(ctx context.Context, id string) (domain.Account, error)
	AccountByEmail(ctx context.Context, email string) (domain.Account, error)
	UpdateAccount(ctx context.Context, acc domain.Account) error

	RevokeToken(ctx context.Context, tokenID string, until time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)

	PutResetToken(ctx context.Context, token, userID string, until time.Time) error
	// ConsumeResetToken returns the owner and deletes the token.
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

// Compactor removes records that carry no information: empty habit-log
// days and expired token bookkeeping.
type Compactor interface {
	Compact(ctx context.Context, now time.Time) (int, error)
}

// Store is everything a backend provides.
type Store interface {
	Entries
	Habits
	HabitLogs
	Seeder
	Accounts
	Compactor

	Ping(ctx context.Context) error
	Close() error
}
