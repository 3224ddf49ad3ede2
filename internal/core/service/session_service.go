package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/velstore/storefront-gateway/internal/core/domain"
)

// SessionService signs and verifies the HS256 session token stored in the
// browser cookie.
type SessionService struct {
	secret   string
	tokenTTL time.Duration
}

func NewSessionService(secret string, tokenTTL time.Duration) *SessionService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &SessionService{secret: secret, tokenTTL: tokenTTL}
}

// Mint signs a token for the given session. The backend access token rides
// inside the claims so later API and realtime calls can reuse it without a
// second lookup.
func (s *SessionService) Mint(sess *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":         sess.UserID,
		"name":        sess.Name,
		"role":        sess.Role,
		"accessToken": sess.AccessToken,
		"exp":         time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

// Verify parses and validates a session token. Every failure mode collapses
// into domain.ErrInvalidSession; the guard treats a bad token exactly like a
// missing one.
func (s *SessionService) Verify(token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidSession
	}

	sess := &domain.Session{
		UserID:      claimString(claims, "sub"),
		Name:        claimString(claims, "name"),
		Role:        claimString(claims, "role"),
		AccessToken: claimString(claims, "accessToken"),
	}
	if sess.UserID == "" || sess.Role == "" {
		return nil, domain.ErrInvalidSession
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}

	return sess, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
