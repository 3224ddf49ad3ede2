package ports

import (
	"context"

	"github.com/velstore/storefront-gateway/internal/core/domain"
)

// AuditRepository persists access events to the audit collection.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AccessEvent) error
}

// AuditRecorder accepts access events for asynchronous persistence. Record
// must never block the caller; the route guard runs on the request path.
type AuditRecorder interface {
	Record(event domain.AccessEvent)
}
