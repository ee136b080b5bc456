// File: service/ai/contextStore.go
package ai

import (
	"context"
	"encoding/json"
	"time"

	"frontdesk/models"

	"github.com/go-redis/redis/v8"
)

const aiContextPrefix = "ai:ctx:"

// ContextStore keeps the rolling conversation transcript per session.
type ContextStore interface {
	Get(ctx context.Context, sessionID string) (*models.ConversationContext, error)
	Append(ctx context.Context, sessionID, line string) error
	Clear(ctx context.Context, sessionID string) error
}

type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, sessionID string) (*models.ConversationContext, error) {
	key := aiContextPrefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.ConversationContext{}, nil
	}
	if err != nil {
		return nil, err
	}
	var convCtx models.ConversationContext
	if err := json.Unmarshal([]byte(data), &convCtx); err != nil {
		return nil, err
	}
	return &convCtx, nil
}

func (s *RedisContextStore) Append(ctx context.Context, sessionID, line string) error {
	convCtx, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	convCtx.History = append(convCtx.History, line)
	convCtx.UpdatedAt = time.Now()

	key := aiContextPrefix + sessionID
	b, err := json.Marshal(convCtx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, sessionID string) error {
	key := aiContextPrefix + sessionID
	return s.client.Del(ctx, key).Err()
}
