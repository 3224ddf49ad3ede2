package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/velstore/storefront-gateway/internal/core/domain"
	"github.com/velstore/storefront-gateway/internal/core/ports"
)

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// Insert persists an access event to the access_events audit collection.
func (r *AuditRepository) Insert(ctx context.Context, event *domain.AccessEvent) error {
	doc := bson.M{
		"subject":      event.Subject,
		"path":         event.Path,
		"decision":     event.Decision,
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.Role != "" {
		doc["role"] = event.Role
	}

	_, err := r.db.Collection("access_events").InsertOne(ctx, doc)
	return err
}
