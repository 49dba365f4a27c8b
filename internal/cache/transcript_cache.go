package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"mcp-chat/internal/model"
)

// TranscriptCache keeps a conversation's message list in redis for a short
// TTL. A dirty marker set around writes keeps a racing reader from caching a
// stale transcript while an insert is in flight.
type TranscriptCache struct {
	client         *redisv9.Client
	transcriptTTL  time.Duration
	dirtyMarkerTTL time.Duration
}

func NewTranscriptCache(client *redisv9.Client, transcriptTTL, dirtyMarkerTTL time.Duration) *TranscriptCache {
	if transcriptTTL <= 0 {
		transcriptTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &TranscriptCache{
		client:         client,
		transcriptTTL:  transcriptTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *TranscriptCache) Get(ctx context.Context, conversationID uint) ([]model.Message, bool, error) {
	raw, err := c.client.Get(ctx, c.transcriptKey(conversationID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get transcript failed: %w", err)
	}

	var messages []model.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached transcript failed: %w", err)
	}
	return messages, true, nil
}

func (c *TranscriptCache) Set(ctx context.Context, conversationID uint, messages []model.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal transcript cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.transcriptKey(conversationID), payload, c.transcriptTTL).Err(); err != nil {
		return fmt.Errorf("redis set transcript failed: %w", err)
	}
	return nil
}

func (c *TranscriptCache) Delete(ctx context.Context, conversationID uint) error {
	if err := c.client.Del(ctx, c.transcriptKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("redis delete transcript failed: %w", err)
	}
	return nil
}

func (c *TranscriptCache) MarkDirty(ctx context.Context, conversationID uint) error {
	if err := c.client.Set(ctx, c.dirtyKey(conversationID), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *TranscriptCache) IsDirty(ctx context.Context, conversationID uint) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(conversationID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *TranscriptCache) transcriptKey(conversationID uint) string {
	return fmt.Sprintf("chat:transcript:%d", conversationID)
}

func (c *TranscriptCache) dirtyKey(conversationID uint) string {
	return fmt.Sprintf("chat:transcript:dirty:%d", conversationID)
}
