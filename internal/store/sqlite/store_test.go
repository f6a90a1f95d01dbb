package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/store"
	"github.com/MrSnakeDoc/serene/internal/store/storetest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "serene.db"))
	require.NoError(t, err)
	return s
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openTestStore(t)
	})
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "serene.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.ToggleHabit(ctx, "u1", "h1", "2024-01-01")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	logs, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, logs.Day("2024-01-01").Has("h1"))
}

func TestLogRowFormat(t *testing.T) {
	s := openTestStore(t)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	_, err := s.ToggleHabit(ctx, "u1", "h2", "2024-01-01")
	require.NoError(t, err)
	_, err = s.ToggleHabit(ctx, "u1", "h1", "2024-01-01")
	require.NoError(t, err)

	var raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT completed_habits FROM habit_logs WHERE user_id = ? AND date = ?`,
		"u1", "2024-01-01").Scan(&raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"completedHabits":["h1","h2"]}`, raw)
}

func TestCompactPurgesExpiredTokens(t *testing.T) {
	s := openTestStore(t)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()
	now := s.now()

	require.NoError(t, s.RevokeToken(ctx, "old", now.Add(-1)))
	require.NoError(t, s.PutResetToken(ctx, "old", "acc", now.Add(-1)))
	require.NoError(t, s.RevokeToken(ctx, "live", now.Add(time.Hour)))

	removed, err := s.Compact(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	revoked, err := s.IsTokenRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSeedRollsBackOnRefusal(t *testing.T) {
	s := openTestStore(t)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	require.NoError(t, s.SeedInitialData(ctx, "u1", domain.Seed{}))
	err := s.SeedInitialData(ctx, "u1", domain.Seed{
		Entries: []domain.Entry{{ID: "e1", Date: "2024-01-01", Content: "x", CreatedAt: "2024-01-01T00:00:00Z"}},
	})
	assert.ErrorIs(t, err, domain.ErrAlreadySeeded)

	entries, err := s.ListEntries(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
