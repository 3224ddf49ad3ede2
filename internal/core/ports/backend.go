package ports

import (
	"context"

	"github.com/velstore/storefront-gateway/internal/core/domain"
)

// LoginResult carries the identity the backend API returns on a successful
// credential exchange. AccessToken is the bearer credential the gateway
// attaches to subsequent API and realtime calls.
type LoginResult struct {
	UserID      string
	Name        string
	Role        string
	AccessToken string
}

// Backend is the storefront REST API the gateway fronts. Any 401 response is
// surfaced as domain.ErrSessionExpired; payload shapes inside the response
// envelope are otherwise opaque to the gateway.
type Backend interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ListChats(ctx context.Context, accessToken string) ([]domain.ChatSummary, error)
}
