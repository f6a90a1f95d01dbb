package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// Compact deletes completion records whose set became empty. Token keys
// carry a TTL and expire on their own.
func (s *Store) Compact(ctx context.Context, _ time.Time) (int, error) {
	removed := 0

	iter := s.client.Scan(ctx, 0, logKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		userID, date, err := ParseLogKey(key)
		if err != nil {
			continue
		}

		dropped, err := s.dropIfEmpty(ctx, key, userID, date)
		if err != nil {
			return removed, err
		}
		if dropped {
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan habit logs: %w", err)
	}
	return removed, nil
}

func (s *Store) dropIfEmpty(ctx context.Context, key, userID, date string) (bool, error) {
	dropped := false

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return fmt.Errorf("failed to read habit log: %w", err)
		}
		set, err := domain.DecodeLogRecord(data)
		if err != nil || len(set) > 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, LogDatesKey(userID), date)
			return nil
		})
		dropped = err == nil
		return err
	}, key)

	// a toggle landed first, the record is no longer empty
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return dropped, err
}
