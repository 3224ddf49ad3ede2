package domain

import "time"

// Access decision outcomes recorded by the route guard.
const (
	AccessDenied       = "denied"       // valid session, wrong role
	AccessUnauthorized = "unauthorized" // absent or unverifiable session
)

// AccessEvent is an audit record of a rejected page request. Advisory data
// only; the guard's verdict never depends on whether the record lands.
type AccessEvent struct {
	Subject   string    `bson:"subject" json:"subject"`
	Role      string    `bson:"role,omitempty" json:"role,omitempty"`
	Path      string    `bson:"path" json:"path"`
	Decision  string    `bson:"decision" json:"decision"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
