package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// CreateAccount stores an account, claiming its email first
func (s *Store) CreateAccount(ctx context.Context, acc domain.Account) error {
	acc.Email = domain.NormalizeEmail(acc.Email)

	data, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, EmailKey(acc.Email), acc.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim email: %w", err)
	}
	if !claimed {
		return domain.ErrEmailTaken
	}

	if err := s.client.Set(ctx, AccountKey(acc.ID), data, 0).Err(); err != nil {
		// release the email so a retry can succeed
		_ = s.client.Del(ctx, EmailKey(acc.Email)).Err()
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// AccountByID retrieves an account by ID
func (s *Store) AccountByID(ctx context.Context, id string) (domain.Account, error) {
	var acc domain.Account
	found, err := getJSON(ctx, s.client, AccountKey(id), &acc)
	if err != nil {
		return domain.Account{}, err
	}
	if !found {
		return domain.Account{}, domain.NotFoundf("account %s", id)
	}
	return acc, nil
}

// AccountByEmail resolves the email index then loads the account
func (s *Store) AccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	id, err := s.client.Get(ctx, EmailKey(domain.NormalizeEmail(email))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Account{}, domain.NotFoundf("account for %s", email)
		}
		return domain.Account{}, fmt.Errorf("failed to get email index: %w", err)
	}
	return s.AccountByID(ctx, id)
}

// UpdateAccount replaces an existing account, keeping its email
func (s *Store) UpdateAccount(ctx context.Context, acc domain.Account) error {
	key := AccountKey(acc.ID)

	return s.watch(ctx, func(tx *redis.Tx) error {
		var existing domain.Account
		found, err := getJSON(ctx, tx, key, &existing)
		if err != nil {
			return err
		}
		if !found {
			return domain.NotFoundf("account %s", acc.ID)
		}

		acc.Email = existing.Email
		data, err := json.Marshal(acc)
		if err != nil {
			return fmt.Errorf("failed to marshal account: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
}

// RevokeToken marks tokenID revoked; the key expires with the token
func (s *Store) RevokeToken(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, RevokedKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether tokenID was revoked
func (s *Store) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, RevokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}

// PutResetToken stores a reset token that expires at until
func (s *Store) PutResetToken(ctx context.Context, token, userID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, ResetKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken atomically reads and deletes a reset token
func (s *Store) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, ResetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.NotFoundf("reset token")
		}
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	return userID, nil
}
