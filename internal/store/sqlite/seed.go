package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// SeedInitialData claims the seeded_users row first; losing that race
// rolls the whole transaction back.
func (s *Store) SeedInitialData(ctx context.Context, userID string, seed domain.Seed) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO seeded_users (user_id, seeded_at) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			userID, s.now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to mark user seeded: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrAlreadySeeded
		}

		for _, e := range seed.Entries {
			_, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO entries (user_id, id, date, content, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				userID, e.ID, e.Date, e.Content, e.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to seed entry %s: %w", e.ID, err)
			}
		}
		for _, h := range seed.Habits {
			_, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO habits (user_id, id, name, icon) VALUES (?, ?, ?, ?)`,
				userID, h.ID, h.Name, h.Icon)
			if err != nil {
				return fmt.Errorf("failed to seed habit %s: %w", h.ID, err)
			}
		}
		for date, set := range seed.Logs {
			data, err := domain.EncodeLogRecord(set)
			if err != nil {
				return fmt.Errorf("failed to encode habit log %s: %w", date, err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO habit_logs (user_id, date, completed_habits) VALUES (?, ?, ?)`,
				userID, date, string(data))
			if err != nil {
				return fmt.Errorf("failed to seed habit log %s: %w", date, err)
			}
		}
		return nil
	})
}
