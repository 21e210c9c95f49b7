package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vijay-prabhu/jobmatch/internal/job"
)

// RedisSink publishes each list as a JSON Batch on a pub/sub channel for an
// external delivery service to pick up
type RedisSink struct {
	client  *redis.Client
	channel string
	now     func() time.Time
}

// NewRedisSink creates a RedisSink publishing on channel
func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel, now: time.Now}
}

// Deliver publishes jobs for username. A publish with no subscribers is not
// treated as a failure.
func (s *RedisSink) Deliver(ctx context.Context, username string, jobs []job.Posting) error {
	payload, err := json.Marshal(Batch{Username: username, GeneratedAt: s.now(), Jobs: jobs})
	if err != nil {
		return fmt.Errorf("failed to encode delivery: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", s.channel, err)
	}
	return nil
}
