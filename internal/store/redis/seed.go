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

// SeedInitialData writes the starter records and the seeded marker in one
// MULTI. The marker is watched, so two concurrent seeds cannot both land.
func (s *Store) SeedInitialData(ctx context.Context, userID string, seed domain.Seed) error {
	marker := SeededKey(userID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, marker).Result()
		if err != nil {
			return fmt.Errorf("failed to check seeded marker: %w", err)
		}
		if n > 0 {
			return domain.ErrAlreadySeeded
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, e := range seed.Entries {
				data, err := json.Marshal(e)
				if err != nil {
					return fmt.Errorf("failed to marshal entry %s: %w", e.ID, err)
				}
				pipe.Set(ctx, EntryKey(userID, e.ID), data, 0)
				pipe.SAdd(ctx, EntriesKey(userID), e.ID)
			}
			for _, h := range seed.Habits {
				data, err := json.Marshal(h)
				if err != nil {
					return fmt.Errorf("failed to marshal habit %s: %w", h.ID, err)
				}
				pipe.Set(ctx, HabitKey(userID, h.ID), data, 0)
				pipe.SAdd(ctx, HabitsKey(userID), h.ID)
			}
			for date, set := range seed.Logs {
				data, err := domain.EncodeLogRecord(set)
				if err != nil {
					return fmt.Errorf("failed to encode habit log %s: %w", date, err)
				}
				pipe.Set(ctx, LogKey(userID, date), data, 0)
				pipe.SAdd(ctx, LogDatesKey(userID), date)
			}
			pipe.Set(ctx, marker, s.now().UTC().Format(time.RFC3339), 0)
			return nil
		})
		return err
	}, marker)

	switch {
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, domain.ErrAlreadySeeded):
		return domain.ErrAlreadySeeded
	case err != nil:
		return fmt.Errorf("failed to seed initial data: %w", err)
	}
	return nil
}
