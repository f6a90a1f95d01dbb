// Package storetest holds the behaviour every store backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/store"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the whole suite against the backend built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"SaveThenSaveWithIDUpdatesOneRecord", testSaveThenUpdate},
		{"SaveIgnoresDateAndCreatedAtOnUpdate", testSaveKeepsImmutableFields},
		{"SaveUnknownIDIsNotFound", testSaveUnknownID},
		{"SaveDefaultsCreatedAt", testSaveDefaultsCreatedAt},
		{"DeleteEntryRemovesIt", testDeleteEntry},
		{"TwoEntriesScenario", testTwoEntriesScenario},
		{"HabitLifecycle", testHabitLifecycle},
		{"HabitRejectsEmptyName", testHabitRejectsEmptyName},
		{"DeleteHabitKeepsLogMembership", testDeleteHabitKeepsLogs},
		{"ToggleTwiceScenario", testToggleTwice},
		{"ToggleRejectsBadInput", testToggleRejectsBadInput},
		{"ConcurrentTogglesKeepParity", testConcurrentParity},
		{"ConcurrentTogglesLoseNothing", testConcurrentDistinctHabits},
		{"SeedWritesEverythingOnce", testSeedOnce},
		{"UsersAreIsolated", testIsolation},
		{"Accounts", testAccounts},
		{"TokenBookkeeping", testTokens},
		{"CompactDropsEmptyDays", testCompact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func testSaveThenUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.SaveEntry(ctx, "u1", domain.Entry{Date: "2024-01-01", Content: "first"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	updated, err := s.SaveEntry(ctx, "u1", domain.Entry{ID: created.ID, Content: "second"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "second", updated.Content)

	entries, err := s.ListEntries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Content)
	assert.Equal(t, "2024-01-01", entries[0].Date)
}

func testSaveKeepsImmutableFields(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.SaveEntry(ctx, "u1", domain.Entry{
		Date: "2024-01-01", Content: "a", CreatedAt: "2024-01-01T08:00:00Z",
	})
	require.NoError(t, err)

	updated, err := s.SaveEntry(ctx, "u1", domain.Entry{
		ID: created.ID, Date: "2030-12-31", Content: "b", CreatedAt: "2030-12-31T08:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", updated.Date)
	assert.Equal(t, "2024-01-01T08:00:00Z", updated.CreatedAt)
	assert.Equal(t, "b", updated.Content)
}

func testSaveUnknownID(t *testing.T, s store.Store) {
	_, err := s.SaveEntry(context.Background(), "u1", domain.Entry{ID: "missing", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testSaveDefaultsCreatedAt(t *testing.T, s store.Store) {
	created, err := s.SaveEntry(context.Background(), "u1", domain.Entry{Date: "2024-01-01", Content: "x"})
	require.NoError(t, err)
	require.NotEmpty(t, created.CreatedAt)
	_, err = time.Parse(time.RFC3339, created.CreatedAt)
	assert.NoError(t, err)

	_, err = s.SaveEntry(context.Background(), "u1", domain.Entry{Date: "not-a-date", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func testDeleteEntry(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.SaveEntry(ctx, "u1", domain.Entry{Date: "2024-01-01", Content: "x"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteEntry(ctx, "u1", created.ID))

	entries, err := s.ListEntries(ctx, "u1")
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, created.ID, e.ID)
	}

	// deleting again is harmless
	assert.NoError(t, s.DeleteEntry(ctx, "u1", created.ID))
}

func testTwoEntriesScenario(t *testing.T, s store.Store) {
	ctx := context.Background()

	a, err := s.SaveEntry(ctx, "u1", domain.Entry{Date: "2024-01-01", Content: "A"})
	require.NoError(t, err)
	_, err = s.SaveEntry(ctx, "u1", domain.Entry{Date: "2024-01-02", Content: "B"})
	require.NoError(t, err)

	entries, err := s.ListEntries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, s.DeleteEntry(ctx, "u1", a.ID))

	entries, err = s.ListEntries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "B", entries[0].Content)
	assert.Equal(t, "2024-01-02", entries[0].Date)
}

func testHabitLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()

	h, err := s.AddHabit(ctx, "u1", domain.HabitInput{Name: "Read", Icon: "Book"})
	require.NoError(t, err)
	require.NotEmpty(t, h.ID)

	name := "Read 20 minutes"
	updated, err := s.UpdateHabit(ctx, "u1", domain.HabitPatch{ID: h.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "Book", updated.Icon, "icon not in patch must be kept")

	icon := "BookOpen"
	_, err = s.UpdateHabit(ctx, "u1", domain.HabitPatch{ID: h.ID, Icon: &icon})
	require.NoError(t, err)

	habits, err := s.ListHabits(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, domain.Habit{ID: h.ID, Name: name, Icon: icon}, habits[0])

	_, err = s.UpdateHabit(ctx, "u1", domain.HabitPatch{ID: "missing", Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.DeleteHabit(ctx, "u1", h.ID))
	habits, err = s.ListHabits(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func testHabitRejectsEmptyName(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.AddHabit(ctx, "u1", domain.HabitInput{Name: "  ", Icon: "Book"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	h, err := s.AddHabit(ctx, "u1", domain.HabitInput{Name: "Walk", Icon: "Footprints"})
	require.NoError(t, err)
	blank := ""
	_, err = s.UpdateHabit(ctx, "u1", domain.HabitPatch{ID: h.ID, Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func testDeleteHabitKeepsLogs(t *testing.T, s store.Store) {
	ctx := context.Background()

	h, err := s.AddHabit(ctx, "u1", domain.HabitInput{Name: "Stretch", Icon: "Sunrise"})
	require.NoError(t, err)
	_, err = s.ToggleHabit(ctx, "u1", h.ID, "2024-01-01")
	require.NoError(t, err)

	require.NoError(t, s.DeleteHabit(ctx, "u1", h.ID))

	habits, err := s.ListHabits(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, habits)

	logs, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, logs.Day("2024-01-01").Has(h.ID), "deleted habit id must stay in the log")
}

func testToggleTwice(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.ToggleHabit(ctx, "u1", "h2", "2024-01-01")
	require.NoError(t, err)

	logs, err := s.ToggleHabit(ctx, "u1", "h1", "2024-01-01")
	require.NoError(t, err)
	assert.True(t, logs.Day("2024-01-01").Has("h1"))

	logs, err = s.ToggleHabit(ctx, "u1", "h1", "2024-01-01")
	require.NoError(t, err)
	assert.False(t, logs.Day("2024-01-01").Has("h1"))
	assert.True(t, logs.Day("2024-01-01").Has("h2"), "other habits of the day must survive")

	listed, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, listed.Equal(logs), "toggle must return the same mapping a fresh read sees")
}

func testToggleRejectsBadInput(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.ToggleHabit(ctx, "u1", "h1", "2024-13-01")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = s.ToggleHabit(ctx, "u1", "", "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func testConcurrentParity(t *testing.T, s store.Store) {
	ctx := context.Background()
	const workers = 6
	const perWorker = 3

	var mu sync.Mutex
	applied := 0

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := s.ToggleHabit(ctx, "u1", "h1", "2024-01-01")
				if errors.Is(err, domain.ErrContention) {
					continue // nothing was written
				}
				if err != nil {
					t.Errorf("ToggleHabit() error = %v", err)
					return
				}
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	logs, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, applied%2 == 1, logs.Day("2024-01-01").Has("h1"),
		"membership must equal parity of %d applied toggles", applied)
}

func testConcurrentDistinctHabits(t *testing.T, s store.Store) {
	ctx := context.Background()
	const habits = 5

	var wg sync.WaitGroup
	for i := 0; i < habits; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := s.ToggleHabit(ctx, "u1", id, "2024-01-01"); err != nil {
				t.Errorf("ToggleHabit(%s) error = %v", id, err)
			}
		}(fmt.Sprintf("h%d", i))
	}
	wg.Wait()

	logs, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	day := logs.Day("2024-01-01")
	assert.Len(t, day, habits, "no toggle may be lost")
}

func testSeedOnce(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed := domain.Seed{
		Entries: []domain.Entry{{ID: "e1", Date: "2024-01-01", Content: "hello", CreatedAt: "2024-01-01T09:00:00Z"}},
		Habits:  []domain.Habit{{ID: "h1", Name: "Read", Icon: "Book"}, {ID: "h2", Name: "Walk", Icon: "Footprints"}},
		Logs:    domain.HabitLog{"2024-01-01": domain.NewCompletedSet("h1", "h2")},
	}

	require.NoError(t, s.SeedInitialData(ctx, "u1", seed))

	entries, err := s.ListEntries(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, seed.Entries, entries)

	habits, err := s.ListHabits(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, seed.Habits, habits)

	logs, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, logs.Equal(seed.Logs))

	other := domain.Seed{Habits: []domain.Habit{{ID: "h9", Name: "Other", Icon: "Moon"}}}
	err = s.SeedInitialData(ctx, "u1", other)
	assert.ErrorIs(t, err, domain.ErrAlreadySeeded)

	habits, err = s.ListHabits(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, habits, 2, "a refused seed must write nothing")
}

func testIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.SaveEntry(ctx, "alice", domain.Entry{Date: "2024-01-01", Content: "mine"})
	require.NoError(t, err)
	_, err = s.AddHabit(ctx, "alice", domain.HabitInput{Name: "Run", Icon: "Activity"})
	require.NoError(t, err)
	_, err = s.ToggleHabit(ctx, "alice", "h1", "2024-01-01")
	require.NoError(t, err)

	entries, err := s.ListEntries(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, entries)
	habits, err := s.ListHabits(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, habits)
	logs, err := s.ListLogs(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func testAccounts(t *testing.T, s store.Store) {
	ctx := context.Background()
	acc := domain.Account{
		ID:           "acc-1",
		Email:        "Ada@Example.com",
		DisplayName:  "Ada",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, s.CreateAccount(ctx, acc))
	err := s.CreateAccount(ctx, domain.Account{ID: "acc-2", Email: "ada@example.com "})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := s.AccountByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", got.ID)
	assert.Equal(t, "ada@example.com", got.Email)

	got.DisplayName = "Ada L."
	got.Email = "changed@example.com"
	require.NoError(t, s.UpdateAccount(ctx, got))

	byID, err := s.AccountByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", byID.DisplayName)
	assert.Equal(t, "ada@example.com", byID.Email, "email is immutable")

	_, err = s.AccountByID(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.AccountByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = s.UpdateAccount(ctx, domain.Account{ID: "nobody"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testTokens(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now()

	revoked, err := s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.RevokeToken(ctx, "jti-1", now.Add(time.Hour)))
	revoked, err = s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, s.PutResetToken(ctx, "tok", "acc-1", now.Add(time.Hour)))
	owner, err := s.ConsumeResetToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", owner)

	_, err = s.ConsumeResetToken(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrNotFound, "reset tokens are single use")

	require.NoError(t, s.PutResetToken(ctx, "old", "acc-1", now.Add(-time.Minute)))
	_, err = s.ConsumeResetToken(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound, "expired tokens are unusable")
}

func testCompact(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.ToggleHabit(ctx, "u1", "h1", "2024-01-01")
	require.NoError(t, err)
	_, err = s.ToggleHabit(ctx, "u1", "h1", "2024-01-01")
	require.NoError(t, err)
	_, err = s.ToggleHabit(ctx, "u1", "h2", "2024-01-02")
	require.NoError(t, err)

	removed, err := s.Compact(ctx, time.Now())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, 1)

	logs, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, logs.Equal(domain.HabitLog{"2024-01-02": domain.NewCompletedSet("h2")}))

	// toggling a compacted day starts from an empty set again
	logs, err = s.ToggleHabit(ctx, "u1", "h1", "2024-01-01")
	require.NoError(t, err)
	assert.True(t, logs.Day("2024-01-01").Has("h1"))
}
