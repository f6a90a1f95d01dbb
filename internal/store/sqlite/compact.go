package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// Compact deletes empty habit-log rows and expired token rows
func (s *Store) Compact(ctx context.Context, now time.Time) (int, error) {
	removed := 0

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT user_id, date, completed_habits FROM habit_logs`)
		if err != nil {
			return fmt.Errorf("failed to query habit logs: %w", err)
		}

		type day struct{ userID, date string }
		var empty []day
		for rows.Next() {
			var d day
			var data string
			if err := rows.Scan(&d.userID, &d.date, &data); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan habit log: %w", err)
			}
			if set, err := domain.DecodeLogRecord([]byte(data)); err == nil && len(set) == 0 {
				empty = append(empty, d)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, d := range empty {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM habit_logs WHERE user_id = ? AND date = ?`, d.userID, d.date); err != nil {
				return fmt.Errorf("failed to delete habit log: %w", err)
			}
			removed++
		}

		for _, table := range []string{"revoked_tokens", "reset_tokens"} {
			res, err := tx.ExecContext(ctx,
				`DELETE FROM `+table+` WHERE expires_at <= ?`, now.UnixNano())
			if err != nil {
				return fmt.Errorf("failed to purge %s: %w", table, err)
			}
			n, _ := res.RowsAffected()
			removed += int(n)
		}
		return nil
	})
	return removed, err
}
