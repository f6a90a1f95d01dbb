// Package dashboard assembles what a signed-in user sees: it loads the three
// per-user collections, seeds a brand new account and composes the view.
package dashboard

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/store"
)

// Sections reported in State.Degraded
const (
	SectionEntries = "entries"
	SectionHabits  = "habits"
	SectionLogs    = "logs"
)

// Stores is the subset of a store backend the dashboard reads and seeds
type Stores interface {
	store.Entries
	store.Habits
	store.HabitLogs
	store.Seeder
}

// SeedSource yields starter data for the day of now
type SeedSource interface {
	Seed(now time.Time) domain.Seed
}

// State is the raw data of one user
type State struct {
	Entries  []domain.Entry
	Habits   []domain.Habit
	Logs     domain.HabitLog
	Degraded []string // sections whose read failed and were replaced by empty
	Seeded   bool     // starter data was written during this load
}

// Service loads user state. A nil SeedSource disables seeding.
type Service struct {
	stores Stores
	seeds  SeedSource
	log    logger.Logger
	now    func() time.Time
}

func NewService(stores Stores, seeds SeedSource, log logger.Logger) *Service {
	return &Service{stores: stores, seeds: seeds, log: log, now: time.Now}
}

// Load reads entries, habits and logs concurrently. A failed read leaves
// its section empty and is listed in Degraded. When both entries and habits
// were read successfully and are empty, starter data is written once and the
// state is read again.
func (s *Service) Load(ctx context.Context, userID string) State {
	st, entriesErr, habitsErr := s.read(ctx, userID)

	if s.seeds == nil || entriesErr != nil || habitsErr != nil {
		return st
	}
	if len(st.Entries) > 0 || len(st.Habits) > 0 {
		return st
	}

	err := s.stores.SeedInitialData(ctx, userID, s.seeds.Seed(s.now()))
	switch {
	case err == nil:
		s.log.Info("seeded starter data", logger.String("user_id", userID))
	case errors.Is(err, domain.ErrAlreadySeeded):
		// another device got there first, or the user emptied their data
		s.log.Debug("starter data already written", logger.String("user_id", userID))
		return st
	default:
		s.log.Error("seeding failed", logger.String("user_id", userID), logger.Error(err))
		return st
	}

	st, _, _ = s.read(ctx, userID)
	st.Seeded = true
	return st
}

func (s *Service) read(ctx context.Context, userID string) (State, error, error) {
	var (
		st                            State
		entriesErr, habitsErr, logErr error
	)

	// each branch keeps its own error so one failure does not cancel the others
	var g errgroup.Group
	g.Go(func() error {
		st.Entries, entriesErr = s.stores.ListEntries(ctx, userID)
		return nil
	})
	g.Go(func() error {
		st.Habits, habitsErr = s.stores.ListHabits(ctx, userID)
		return nil
	})
	g.Go(func() error {
		st.Logs, logErr = s.stores.ListLogs(ctx, userID)
		return nil
	})
	_ = g.Wait()

	if entriesErr != nil {
		s.degrade(&st, SectionEntries, userID, entriesErr)
		st.Entries = nil
	}
	if habitsErr != nil {
		s.degrade(&st, SectionHabits, userID, habitsErr)
		st.Habits = nil
	}
	if logErr != nil {
		s.degrade(&st, SectionLogs, userID, logErr)
		st.Logs = nil
	}

	if st.Entries == nil {
		st.Entries = []domain.Entry{}
	}
	if st.Habits == nil {
		st.Habits = []domain.Habit{}
	}
	if st.Logs == nil {
		st.Logs = domain.HabitLog{}
	}
	return st, entriesErr, habitsErr
}

func (s *Service) degrade(st *State, section, userID string, err error) {
	s.log.Error("failed to read "+section,
		logger.String("user_id", userID),
		logger.Error(err))
	st.Degraded = append(st.Degraded, section)
}
