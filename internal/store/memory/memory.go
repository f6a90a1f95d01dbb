// Package memory is an in-process store backend. It holds every user's data
// in maps guarded by one RWMutex and is used for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// userData is everything owned by one user.
type userData struct {
	entries map[string]domain.Entry // ID -> Entry
	habits  map[string]domain.Habit // ID -> Habit
	logs    domain.HabitLog         // date -> completed set
	seeded  bool
}

type resetToken struct {
	userID string
	until  time.Time
}

// Store provides in-memory storage for entries, habits, logs and accounts.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userData

	accounts map[string]domain.Account // ID -> Account
	emails   map[string]string         // normalized email -> ID
	revoked  map[string]time.Time      // token ID -> revoked until
	resets   map[string]resetToken     // token -> owner

	newID func() string
	now   func() time.Time
}

// New creates an empty memory store.
func New() *Store {
	return &Store{
		users:    make(map[string]*userData),
		accounts: make(map[string]domain.Account),
		emails:   make(map[string]string),
		revoked:  make(map[string]time.Time),
		resets:   make(map[string]resetToken),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// user returns the data of userID, creating it. Caller holds the write lock.
func (s *Store) user(userID string) *userData {
	u, ok := s.users[userID]
	if !ok {
		u = &userData{
			entries: make(map[string]domain.Entry),
			habits:  make(map[string]domain.Habit),
			logs:    make(domain.HabitLog),
		}
		s.users[userID] = u
	}
	return u
}

// ─────────────────────────────────────────────────────────────────
// Entries
// ─────────────────────────────────────────────────────────────────

// ListEntries returns all entries of the user
func (s *Store) ListEntries(_ context.Context, userID string) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return []domain.Entry{}, nil
	}
	entries := make([]domain.Entry, 0, len(u.entries))
	for _, e := range u.entries {
		entries = append(entries, e)
	}
	return entries, nil
}

// SaveEntry creates or updates an entry
func (s *Store) SaveEntry(_ context.Context, userID string, entry domain.Entry) (domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if entry.ID != "" {
		existing, ok := u.entries[entry.ID]
		if !ok {
			return domain.Entry{}, domain.NotFoundf("entry %s", entry.ID)
		}
		existing.Content = entry.Content
		u.entries[entry.ID] = existing
		return existing, nil
	}

	if err := domain.ValidateNewEntry(entry); err != nil {
		return domain.Entry{}, err
	}
	entry.ID = s.newID()
	if entry.CreatedAt == "" {
		entry.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	u.entries[entry.ID] = entry
	return entry, nil
}

// DeleteEntry removes an entry, succeeding when it does not exist
func (s *Store) DeleteEntry(_ context.Context, userID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		delete(u.entries, entryID)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Habits
// ─────────────────────────────────────────────────────────────────

// ListHabits returns all habit definitions of the user
func (s *Store) ListHabits(_ context.Context, userID string) ([]domain.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return []domain.Habit{}, nil
	}
	habits := make([]domain.Habit, 0, len(u.habits))
	for _, h := range u.habits {
		habits = append(habits, h)
	}
	return habits, nil
}

// AddHabit creates a habit with a fresh ID
func (s *Store) AddHabit(_ context.Context, userID string, in domain.HabitInput) (domain.Habit, error) {
	if err := domain.ValidateHabitName(in.Name); err != nil {
		return domain.Habit{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := domain.Habit{ID: s.newID(), Name: in.Name, Icon: in.Icon}
	s.user(userID).habits[h.ID] = h
	return h, nil
}

// UpdateHabit merges the patch into an existing habit
func (s *Store) UpdateHabit(_ context.Context, userID string, patch domain.HabitPatch) (domain.Habit, error) {
	if err := domain.ValidatePatch(patch); err != nil {
		return domain.Habit{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	existing, ok := u.habits[patch.ID]
	if !ok {
		return domain.Habit{}, domain.NotFoundf("habit %s", patch.ID)
	}
	updated := patch.Apply(existing)
	u.habits[patch.ID] = updated
	return updated, nil
}

// DeleteHabit removes a habit definition (logs keep its ID)
func (s *Store) DeleteHabit(_ context.Context, userID, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		delete(u.habits, habitID)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Habit logs
// ─────────────────────────────────────────────────────────────────

// ListLogs returns a copy of the user's habit log
func (s *Store) ListLogs(_ context.Context, userID string) (domain.HabitLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return domain.HabitLog{}, nil
	}
	return u.logs.Clone().Normalize(), nil
}

// ToggleHabit flips habitID for date under the write lock
func (s *Store) ToggleHabit(_ context.Context, userID, habitID, date string) (domain.HabitLog, error) {
	if habitID == "" {
		return nil, domain.Invalidf("habit id is required")
	}
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	day, ok := u.logs[date]
	if !ok {
		day = domain.CompletedSet{}
		u.logs[date] = day
	}
	day.Toggle(habitID)

	return u.logs.Clone().Normalize(), nil
}

// ─────────────────────────────────────────────────────────────────
// Seeding
// ─────────────────────────────────────────────────────────────────

// SeedInitialData writes starter data once
func (s *Store) SeedInitialData(_ context.Context, userID string, seed domain.Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if u.seeded {
		return domain.ErrAlreadySeeded
	}
	for _, e := range seed.Entries {
		u.entries[e.ID] = e
	}
	for _, h := range seed.Habits {
		u.habits[h.ID] = h
	}
	for date, set := range seed.Logs {
		u.logs[date] = set.Clone()
	}
	u.seeded = true
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Accounts
// ─────────────────────────────────────────────────────────────────

// CreateAccount stores a new account, rejecting duplicate emails
func (s *Store) CreateAccount(_ context.Context, acc domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(acc.Email)
	if _, taken := s.emails[email]; taken {
		return domain.ErrEmailTaken
	}
	acc.Email = email
	s.accounts[acc.ID] = acc
	s.emails[email] = acc.ID
	return nil
}

// AccountByID looks an account up by ID
func (s *Store) AccountByID(_ context.Context, id string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.NotFoundf("account %s", id)
	}
	return acc, nil
}

// AccountByEmail looks an account up by email
func (s *Store) AccountByEmail(_ context.Context, email string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return domain.Account{}, domain.NotFoundf("account for %s", email)
	}
	return s.accounts[id], nil
}

// UpdateAccount replaces an existing account (email is immutable)
func (s *Store) UpdateAccount(_ context.Context, acc domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[acc.ID]
	if !ok {
		return domain.NotFoundf("account %s", acc.ID)
	}
	acc.Email = existing.Email
	s.accounts[acc.ID] = acc
	return nil
}

// RevokeToken marks a token ID as revoked until the given time
func (s *Store) RevokeToken(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revoked[tokenID] = until
	return nil
}

// IsTokenRevoked reports whether a token ID is currently revoked
func (s *Store) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	until, ok := s.revoked[tokenID]
	return ok && s.now().Before(until), nil
}

// PutResetToken stores a single-use password reset token
func (s *Store) PutResetToken(_ context.Context, token, userID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resets[token] = resetToken{userID: userID, until: until}
	return nil
}

// ConsumeResetToken returns the token owner and deletes the token
func (s *Store) ConsumeResetToken(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.resets[token]
	if !ok || !s.now().Before(rt.until) {
		delete(s.resets, token)
		return "", domain.NotFoundf("reset token")
	}
	delete(s.resets, token)
	return rt.userID, nil
}

// ─────────────────────────────────────────────────────────────────
// Maintenance
// ─────────────────────────────────────────────────────────────────

// Compact drops empty log days and expired token bookkeeping
func (s *Store) Compact(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, u := range s.users {
		for date, set := range u.logs {
			if len(set) == 0 {
				delete(u.logs, date)
				removed++
			}
		}
	}
	for id, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, id)
			removed++
		}
	}
	for token, rt := range s.resets {
		if !now.Before(rt.until) {
			delete(s.resets, token)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op
func (s *Store) Close() error { return nil }

