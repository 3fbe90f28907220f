package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStateStore persists connector state in Redis, for deployments where
// the connector runs on more than one node and a local state file won't do.
type RedisStateStore struct {
	client *redis.Client
	key    string
}

// NewRedisStateStore connects to redisURL and stores state under key.
func NewRedisStateStore(redisURL, key string) (*RedisStateStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if key == "" {
		key = "trustar-connector:state"
	}
	return &RedisStateStore{client: redis.NewClient(opts), key: key}, nil
}

// Load reads the state blob. A missing key yields the zero state.
func (s *RedisStateStore) Load(ctx context.Context) (State, error) {
	var state State
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("failed to load state from redis: %w", err)
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse state from redis: %w", err)
	}
	return state, nil
}

// Save writes the state blob without expiry.
func (s *RedisStateStore) Save(ctx context.Context, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state to redis: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStateStore) Close() error { return s.client.Close() }
