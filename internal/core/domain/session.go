package domain

import (
	"errors"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

var ErrInvalidSession = errors.New("invalid session")
var ErrSessionExpired = errors.New("session expired")
var ErrInvalidCredentials = errors.New("invalid credentials")

// Session is the decoded view of the signed session cookie. It asserts who
// the browser is and carries the backend access token used for API and
// realtime calls on the user's behalf.
type Session struct {
	UserID      string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Role        string    `json:"role"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsCustomer reports whether the session belongs to a storefront customer.
// Only customers may pass the route guard; staff roles use a separate panel.
func (s *Session) IsCustomer() bool {
	return s != nil && s.Role == RoleCustomer
}
