package ports

import (
	"context"

	"github.com/velstore/storefront-gateway/internal/core/domain"
)

// ChatCache is the gateway-side read model for conversation digests, kept
// warm by realtime chat:updated events and consulted before hitting the
// backend API.
type ChatCache interface {
	// UpsertSummary stores or refreshes the digest for one conversation.
	UpsertSummary(ctx context.Context, userID string, summary domain.ChatSummary) error
	// Summaries returns all cached digests for a user. An empty slice with a
	// nil error means a cache miss.
	Summaries(ctx context.Context, userID string) ([]domain.ChatSummary, error)
	// MarkDelivered records a delivered message id and reports whether it was
	// seen before. Reconnect replays hit true and must not be re-relayed.
	MarkDelivered(ctx context.Context, chatID, messageID string) (bool, error)
}
