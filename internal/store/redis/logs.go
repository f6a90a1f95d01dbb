package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// ListLogs retrieves the completion sets of every logged date
func (s *Store) ListLogs(ctx context.Context, userID string) (domain.HabitLog, error) {
	dates, err := s.client.SMembers(ctx, LogDatesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get log dates: %w", err)
	}

	logs := make(domain.HabitLog, len(dates))
	if len(dates) == 0 {
		return logs, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(dates))
	for _, date := range dates {
		cmds[date] = pipe.Get(ctx, LogKey(userID, date))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read habit logs: %w", err)
	}

	for date, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read habit log %s: %w", date, err)
		}
		set, err := domain.DecodeLogRecord(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode habit log %s: %w", date, err)
		}
		logs[date] = set
	}
	return logs.Normalize(), nil
}

// ToggleHabit flips habitID in the record of date inside a WATCH/MULTI
// transaction, then re-reads the whole mapping.
func (s *Store) ToggleHabit(ctx context.Context, userID, habitID, date string) (domain.HabitLog, error) {
	if habitID == "" {
		return nil, domain.Invalidf("habit id is required")
	}
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}

	key := LogKey(userID, date)
	err := s.watch(ctx, func(tx *redis.Tx) error {
		set := domain.CompletedSet{}
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("failed to read habit log: %w", err)
		default:
			if set, err = domain.DecodeLogRecord(data); err != nil {
				return fmt.Errorf("failed to decode habit log: %w", err)
			}
		}

		set.Toggle(habitID)
		out, err := domain.EncodeLogRecord(set)
		if err != nil {
			return fmt.Errorf("failed to encode habit log: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			pipe.SAdd(ctx, LogDatesKey(userID), date)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return nil, err
	}

	return s.ListLogs(ctx, userID)
}
