package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

func (s *Store) ListHabits(ctx context.Context, userID string) ([]domain.Habit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, icon FROM habits WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	habits := []domain.Habit{}
	for rows.Next() {
		var h domain.Habit
		if err := rows.Scan(&h.ID, &h.Name, &h.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) AddHabit(ctx context.Context, userID string, in domain.HabitInput) (domain.Habit, error) {
	if err := domain.ValidateHabitName(in.Name); err != nil {
		return domain.Habit{}, err
	}

	h := domain.Habit{ID: s.newID(), Name: in.Name, Icon: in.Icon}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO habits (user_id, id, name, icon) VALUES (?, ?, ?, ?)`,
		userID, h.ID, h.Name, h.Icon)
	if err != nil {
		return domain.Habit{}, fmt.Errorf("failed to insert habit: %w", err)
	}
	return h, nil
}

func (s *Store) UpdateHabit(ctx context.Context, userID string, patch domain.HabitPatch) (domain.Habit, error) {
	if err := domain.ValidatePatch(patch); err != nil {
		return domain.Habit{}, err
	}

	var updated domain.Habit
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var existing domain.Habit
		err := tx.QueryRowContext(ctx,
			`SELECT id, name, icon FROM habits WHERE user_id = ? AND id = ?`,
			userID, patch.ID).Scan(&existing.ID, &existing.Name, &existing.Icon)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundf("habit %s", patch.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to load habit: %w", err)
		}

		updated = patch.Apply(existing)
		_, err = tx.ExecContext(ctx,
			`UPDATE habits SET name = ?, icon = ? WHERE user_id = ? AND id = ?`,
			updated.Name, updated.Icon, userID, patch.ID)
		if err != nil {
			return fmt.Errorf("failed to update habit: %w", err)
		}
		return nil
	})
	return updated, err
}

// DeleteHabit removes the definition only; habit_logs rows keep the ID
func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM habits WHERE user_id = ? AND id = ?`, userID, habitID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}
