package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces draft keys in a shared redis.
const RedisKeyPrefix = "prompthub:draft:"

// RedisStore keeps drafts in redis, for setups where several workspace
// processes on one machine share a draft pool.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient creates a store from an existing client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: RedisKeyPrefix}
}

func (s *RedisStore) key(docID string) string {
	return s.prefix + docID
}

// Read returns the stored draft for docID, or "" when there is none.
func (s *RedisStore) Read(ctx context.Context, docID string) (string, error) {
	v, err := s.client.Get(ctx, s.key(docID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read draft: %w", err)
	}
	return v, nil
}

// Write replaces the draft for docID. Drafts do not expire.
func (s *RedisStore) Write(ctx context.Context, docID, content string) error {
	if err := s.client.Set(ctx, s.key(docID), content, 0).Err(); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// Clear removes the draft for docID.
func (s *RedisStore) Clear(ctx context.Context, docID string) error {
	if err := s.client.Del(ctx, s.key(docID)).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// ClearAll removes every draft under the store's prefix.
func (s *RedisStore) ClearAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan drafts: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear drafts: %w", err)
	}
	return nil
}

// Ping checks if redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
