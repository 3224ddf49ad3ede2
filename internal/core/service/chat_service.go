package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/velstore/storefront-gateway/internal/api/metrics"
	"github.com/velstore/storefront-gateway/internal/core/domain"
	"github.com/velstore/storefront-gateway/internal/core/ports"
)

// ChatService serves the conversation inbox from the Redis read model,
// falling back to the backend API on a miss and warming the cache with the
// result.
type ChatService struct {
	cache   ports.ChatCache
	backend ports.Backend
	log     zerolog.Logger
}

func NewChatService(cache ports.ChatCache, backend ports.Backend, log zerolog.Logger) *ChatService {
	return &ChatService{cache: cache, backend: backend, log: log}
}

func (s *ChatService) Summaries(ctx context.Context, sess *domain.Session) ([]domain.ChatSummary, error) {
	cached, err := s.cache.Summaries(ctx, sess.UserID)
	if err != nil {
		// Cache trouble degrades to a backend fetch.
		s.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("chat summary cache read failed")
	}
	if len(cached) > 0 {
		metrics.ChatCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.ChatCacheTotal.WithLabelValues("miss").Inc()

	fetched, err := s.backend.ListChats(ctx, sess.AccessToken)
	if err != nil {
		return nil, err
	}

	for _, summary := range fetched {
		if err := s.cache.UpsertSummary(ctx, sess.UserID, summary); err != nil {
			s.log.Warn().Err(err).Str("chat_id", summary.ChatID).Msg("chat summary cache warm failed")
			break
		}
	}

	return fetched, nil
}
