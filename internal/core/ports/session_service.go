package ports

import (
	"github.com/velstore/storefront-gateway/internal/core/domain"
)

// SessionService mints and verifies the signed session cookie. Verification
// failures of any kind (absent, malformed, expired, bad signature) collapse
// into domain.ErrInvalidSession so callers cannot distinguish them.
type SessionService interface {
	Mint(session *domain.Session) (string, error)
	Verify(token string) (*domain.Session, error)
}
