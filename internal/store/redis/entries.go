package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/serene/internal/domain"
)

// ListEntries retrieves all entries of the user
func (s *Store) ListEntries(ctx context.Context, userID string) ([]domain.Entry, error) {
	ids, err := s.client.SMembers(ctx, EntriesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry IDs: %w", err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = EntryKey(userID, id)
	}
	values, err := getMany(ctx, s.client, keys)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.Entry, 0, len(values))
	for _, data := range values {
		var e domain.Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SaveEntry creates an entry, or replaces the content of entry.ID
func (s *Store) SaveEntry(ctx context.Context, userID string, entry domain.Entry) (domain.Entry, error) {
	if entry.ID != "" {
		return s.updateEntryContent(ctx, userID, entry.ID, entry.Content)
	}

	if err := domain.ValidateNewEntry(entry); err != nil {
		return domain.Entry{}, err
	}
	entry.ID = s.newID()
	if entry.CreatedAt == "" {
		entry.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("failed to marshal entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, EntryKey(userID, entry.ID), data, 0)
		pipe.SAdd(ctx, EntriesKey(userID), entry.ID)
		return nil
	})
	if err != nil {
		return domain.Entry{}, fmt.Errorf("failed to save entry: %w", err)
	}
	return entry, nil
}

func (s *Store) updateEntryContent(ctx context.Context, userID, id, content string) (domain.Entry, error) {
	key := EntryKey(userID, id)
	var updated domain.Entry

	err := s.watch(ctx, func(tx *redis.Tx) error {
		var existing domain.Entry
		found, err := getJSON(ctx, tx, key, &existing)
		if err != nil {
			return err
		}
		if !found {
			return domain.NotFoundf("entry %s", id)
		}

		existing.Content = content
		data, err := json.Marshal(existing)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		updated = existing
		return err
	}, key)
	if err != nil {
		return domain.Entry{}, err
	}
	return updated, nil
}

// DeleteEntry removes an entry and its index membership
func (s *Store) DeleteEntry(ctx context.Context, userID, entryID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, EntryKey(userID, entryID))
		pipe.SRem(ctx, EntriesKey(userID), entryID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}
