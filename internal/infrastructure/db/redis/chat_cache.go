package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/velstore/storefront-gateway/internal/core/domain"
)

const (
	// summaryTTL bounds staleness of the inbox read model; realtime
	// chat:updated events refresh entries well before expiry.
	summaryTTL = 15 * time.Minute
	// dedupTTL covers the reconnect-replay window for delivered messages.
	dedupTTL = time.Hour
)

// ChatCache is the Redis-backed inbox read model and delivered-message
// dedup store.
// Key formats:
//
//	chat:summaries:<user_id>            (hash: chat_id → summary JSON)
//	chat:delivered:<chat_id>:<msg_id>   (marker with TTL)
type ChatCache struct {
	client *redis.Client
}

// NewChatCache creates a ChatCache wrapping the given Redis client.
func NewChatCache(client *redis.Client) *ChatCache {
	return &ChatCache{client: client}
}

// UpsertSummary stores or refreshes one conversation digest and renews the
// hash TTL.
func (c *ChatCache) UpsertSummary(ctx context.Context, userID string, summary domain.ChatSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal chat summary: %w", err)
	}

	key := c.summaryKey(userID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, summary.ChatID, raw)
	pipe.Expire(ctx, key, summaryTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store chat summary: %w", err)
	}
	return nil
}

// Summaries returns all cached digests for a user, most recent first. An
// empty result with a nil error is a cache miss.
func (c *ChatCache) Summaries(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	entries, err := c.client.HGetAll(ctx, c.summaryKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read chat summaries: %w", err)
	}

	summaries := make([]domain.ChatSummary, 0, len(entries))
	for _, raw := range entries {
		var s domain.ChatSummary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			continue
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})
	return summaries, nil
}

// MarkDelivered records a delivered message id and reports whether it was
// already seen. Reconnect replays return true.
func (c *ChatCache) MarkDelivered(ctx context.Context, chatID, messageID string) (bool, error) {
	set, err := c.client.SetNX(ctx, c.deliveredKey(chatID, messageID), "1", dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark delivered: %w", err)
	}
	return !set, nil
}

func (c *ChatCache) summaryKey(userID string) string {
	return "chat:summaries:" + userID
}

func (c *ChatCache) deliveredKey(chatID, messageID string) string {
	return fmt.Sprintf("chat:delivered:%s:%s", chatID, messageID)
}
