package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/serene/internal/domain"
	"github.com/MrSnakeDoc/serene/internal/store"
)

// Store handles Redis operations for entries, habits, logs and accounts
type Store struct {
	client     *redis.Client
	maxRetries int

	newID func() string
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

// NewStore creates a new Redis store. maxRetries bounds optimistic
// transactions; zero or less selects store.DefaultMaxToggleRetries.
func NewStore(client *redis.Client, maxRetries int) *Store {
	if maxRetries <= 0 {
		maxRetries = store.DefaultMaxToggleRetries
	}
	return &Store{
		client:     client,
		maxRetries: maxRetries,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

// watch runs fn as an optimistic transaction over keys, retrying when a
// watched key changed before EXEC.
func (s *Store) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return domain.ErrContention
}

// getJSON loads key into v. found is false when the key does not exist.
func getJSON(ctx context.Context, c redis.Cmdable, key string, v any) (found bool, err error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// getMany fetches keys in one pipeline, skipping the ones that vanished
func getMany(ctx context.Context, c redis.Cmdable, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	pipe := c.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	values := make([][]byte, 0, len(keys))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		values = append(values, data)
	}
	return values, nil
}
