package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) ListLogs(ctx context.Context, userID string) (domain.HabitLog, error) {
	return listLogs(ctx, s.db, userID)
}

func listLogs(ctx context.Context, q queryer, userID string) (domain.HabitLog, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT date, completed_habits FROM habit_logs WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit logs: %w", err)
	}
	defer rows.Close()

	logs := domain.HabitLog{}
	for rows.Next() {
		var date, data string
		if err := rows.Scan(&date, &data); err != nil {
			return nil, fmt.Errorf("failed to scan habit log: %w", err)
		}
		set, err := domain.DecodeLogRecord([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode habit log %s: %w", date, err)
		}
		logs[date] = set
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs.Normalize(), nil
}

// ToggleHabit flips habitID for date and reads the mapping back inside the
// same transaction.
func (s *Store) ToggleHabit(ctx context.Context, userID, habitID, date string) (domain.HabitLog, error) {
	if habitID == "" {
		return nil, domain.Invalidf("habit id is required")
	}
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}

	var logs domain.HabitLog
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		set := domain.CompletedSet{}

		var data string
		err := tx.QueryRowContext(ctx,
			`SELECT completed_habits FROM habit_logs WHERE user_id = ? AND date = ?`,
			userID, date).Scan(&data)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to read habit log: %w", err)
		default:
			if set, err = domain.DecodeLogRecord([]byte(data)); err != nil {
				return fmt.Errorf("failed to decode habit log: %w", err)
			}
		}

		set.Toggle(habitID)
		out, err := domain.EncodeLogRecord(set)
		if err != nil {
			return fmt.Errorf("failed to encode habit log: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO habit_logs (user_id, date, completed_habits) VALUES (?, ?, ?)
			ON CONFLICT (user_id, date) DO UPDATE SET completed_habits = excluded.completed_habits`,
			userID, date, string(out))
		if err != nil {
			return fmt.Errorf("failed to write habit log: %w", err)
		}

		logs, err = listLogs(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}
