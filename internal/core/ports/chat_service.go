package ports

import (
	"context"

	"github.com/velstore/storefront-gateway/internal/core/domain"
)

// ChatService serves the conversation inbox: cache first, backend API on a
// miss, warming the cache from whatever the backend returns.
type ChatService interface {
	Summaries(ctx context.Context, session *domain.Session) ([]domain.ChatSummary, error)
}
