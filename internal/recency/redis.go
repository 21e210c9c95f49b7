package recency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the cache in a single Redis hash, one field per URL
type RedisStore struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedisStore creates a RedisStore writing to <prefix>recency
func NewRedisStore(client *redis.Client, prefix string, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, key: prefix + "recency", logger: logger}
}

// NewRedisClient parses redisURL and verifies connectivity
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Key returns the hash key
func (s *RedisStore) Key() string {
	return s.key
}

// Load reads every field of the hash. Fields that fail to decode are skipped.
func (s *RedisStore) Load(ctx context.Context) ([]Entry, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.key, err)
	}

	entries := make([]Entry, 0, len(fields))
	for url, raw := range fields {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			s.logger.Warn("recency: skipping undecodable redis entry",
				slog.String("url", url), slog.Any("error", err))
			continue
		}
		e.URL = url
		entries = append(entries, e)
	}
	return entries, nil
}

// Save replaces the hash atomically
func (s *RedisStore) Save(ctx context.Context, entries []Entry) error {
	values := make([]interface{}, 0, 2*len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode entry %s: %w", e.URL, err)
		}
		values = append(values, e.URL, string(data))
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(values) > 0 {
		pipe.HSet(ctx, s.key, values...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}
