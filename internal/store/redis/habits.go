package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// ListHabits retrieves all habit definitions of the user
func (s *Store) ListHabits(ctx context.Context, userID string) ([]domain.Habit, error) {
	ids, err := s.client.SMembers(ctx, HabitsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get habit IDs: %w", err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = HabitKey(userID, id)
	}
	values, err := getMany(ctx, s.client, keys)
	if err != nil {
		return nil, err
	}

	habits := make([]domain.Habit, 0, len(values))
	for _, data := range values {
		var h domain.Habit
		if err := json.Unmarshal(data, &h); err != nil {
			return nil, fmt.Errorf("failed to unmarshal habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, nil
}

// AddHabit stores a new habit under a fresh ID
func (s *Store) AddHabit(ctx context.Context, userID string, in domain.HabitInput) (domain.Habit, error) {
	if err := domain.ValidateHabitName(in.Name); err != nil {
		return domain.Habit{}, err
	}

	h := domain.Habit{ID: s.newID(), Name: in.Name, Icon: in.Icon}
	data, err := json.Marshal(h)
	if err != nil {
		return domain.Habit{}, fmt.Errorf("failed to marshal habit: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, HabitKey(userID, h.ID), data, 0)
		pipe.SAdd(ctx, HabitsKey(userID), h.ID)
		return nil
	})
	if err != nil {
		return domain.Habit{}, fmt.Errorf("failed to save habit: %w", err)
	}
	return h, nil
}

// UpdateHabit merges a patch into an existing habit
func (s *Store) UpdateHabit(ctx context.Context, userID string, patch domain.HabitPatch) (domain.Habit, error) {
	if err := domain.ValidatePatch(patch); err != nil {
		return domain.Habit{}, err
	}

	key := HabitKey(userID, patch.ID)
	var updated domain.Habit

	err := s.watch(ctx, func(tx *redis.Tx) error {
		var existing domain.Habit
		found, err := getJSON(ctx, tx, key, &existing)
		if err != nil {
			return err
		}
		if !found {
			return domain.NotFoundf("habit %s", patch.ID)
		}

		updated = patch.Apply(existing)
		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal habit: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return domain.Habit{}, err
	}
	return updated, nil
}

// DeleteHabit removes the definition; completion records keep the ID
func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, HabitKey(userID, habitID))
		pipe.SRem(ctx, HabitsKey(userID), habitID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}
