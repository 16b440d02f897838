package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"dudas-espanol/internal/model"
)

// HistoryStore keeps the ordered turns of each browser session. Implementations
// only ever append; nothing outlives the session TTL.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, turn model.Turn) error
	List(ctx context.Context, sessionID string) ([]model.Turn, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

type RedisHistory struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisHistory(client *redisv9.Client, ttl time.Duration) *RedisHistory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisHistory{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisHistory) Append(ctx context.Context, sessionID string, turn model.Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn failed: %w", err)
	}

	key := c.historyKey(sessionID)
	_, err = c.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append turn failed: %w", err)
	}
	return nil
}

func (c *RedisHistory) List(ctx context.Context, sessionID string) ([]model.Turn, error) {
	raw, err := c.client.LRange(ctx, c.historyKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list history failed: %w", err)
	}

	turns := make([]model.Turn, 0, len(raw))
	for _, item := range raw {
		var turn model.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal cached turn failed: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (c *RedisHistory) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func (c *RedisHistory) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisHistory) historyKey(sessionID string) string {
	return fmt.Sprintf("chat:history:%s", sessionID)
}
