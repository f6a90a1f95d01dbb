package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

func (s *Store) ListEntries(ctx context.Context, userID string) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, content, created_at
		FROM entries WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.Content, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) SaveEntry(ctx context.Context, userID string, entry domain.Entry) (domain.Entry, error) {
	if entry.ID != "" {
		var updated domain.Entry
		err := s.inTx(ctx, func(tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx,
				`UPDATE entries SET content = ? WHERE user_id = ? AND id = ?`,
				entry.Content, userID, entry.ID)
			if err != nil {
				return fmt.Errorf("failed to update entry: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return domain.NotFoundf("entry %s", entry.ID)
			}
			row := tx.QueryRowContext(ctx, `
				SELECT id, date, content, created_at
				FROM entries WHERE user_id = ? AND id = ?`, userID, entry.ID)
			return row.Scan(&updated.ID, &updated.Date, &updated.Content, &updated.CreatedAt)
		})
		return updated, err
	}

	if err := domain.ValidateNewEntry(entry); err != nil {
		return domain.Entry{}, err
	}
	entry.ID = s.newID()
	if entry.CreatedAt == "" {
		entry.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (user_id, id, date, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, entry.ID, entry.Date, entry.Content, entry.CreatedAt)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}
	return entry, nil
}

func (s *Store) DeleteEntry(ctx context.Context, userID, entryID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE user_id = ? AND id = ?`, userID, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}
