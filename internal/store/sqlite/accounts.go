package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

const accountColumns = `id, email, display_name, photo_url, password_hash, created_at`

func (s *Store) CreateAccount(ctx context.Context, acc domain.Account) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING`,
		acc.ID, domain.NormalizeEmail(acc.Email), acc.DisplayName, acc.PhotoURL,
		acc.PasswordHash, acc.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrEmailTaken
	}
	return nil
}

func (s *Store) AccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.NotFoundf("account %s", id)
	}
	return acc, err
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, domain.NormalizeEmail(email))
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.NotFoundf("account for %s", email)
	}
	return acc, err
}

// UpdateAccount rewrites the mutable columns; email stays as stored
func (s *Store) UpdateAccount(ctx context.Context, acc domain.Account) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET display_name = ?, photo_url = ?, password_hash = ?
		WHERE id = ?`,
		acc.DisplayName, acc.PhotoURL, acc.PasswordHash, acc.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("account %s", acc.ID)
	}
	return nil
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var acc domain.Account
	var createdAt string
	if err := row.Scan(&acc.ID, &acc.Email, &acc.DisplayName, &acc.PhotoURL, &acc.PasswordHash, &createdAt); err != nil {
		return domain.Account{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	acc.CreatedAt = t
	return acc, nil
}

func (s *Store) RevokeToken(ctx context.Context, tokenID string, until time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (token_id, expires_at) VALUES (?, ?)
		ON CONFLICT (token_id) DO UPDATE SET expires_at = excluded.expires_at`,
		tokenID, until.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *Store) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM revoked_tokens WHERE token_id = ? AND expires_at > ?`,
		tokenID, s.now().UnixNano()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}

func (s *Store) PutResetToken(ctx context.Context, token, userID string, until time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reset_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, until.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken deletes the token and returns its owner when it was
// still valid.
func (s *Store) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	var userID string
	var expiresAt int64

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT user_id, expires_at FROM reset_tokens WHERE token = ?`, token).
			Scan(&userID, &expiresAt)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundf("reset token")
		}
		if err != nil {
			return fmt.Errorf("failed to read reset token: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reset_tokens WHERE token = ?`, token); err != nil {
			return fmt.Errorf("failed to delete reset token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if expiresAt <= s.now().UnixNano() {
		return "", domain.NotFoundf("reset token")
	}
	return userID, nil
}
