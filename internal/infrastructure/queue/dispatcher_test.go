package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/velstore/storefront-gateway/internal/core/domain"
)

type memoryAuditRepo struct {
	mu     sync.Mutex
	events []domain.AccessEvent
}

func (r *memoryAuditRepo) Insert(_ context.Context, event *domain.AccessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryAuditRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestDispatcher_PersistsRecordedEvents(t *testing.T) {
	repo := &memoryAuditRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 10; i++ {
		d.Record(domain.AccessEvent{
			Subject:   "u1",
			Path:      "/orders",
			Decision:  domain.AccessDenied,
			Timestamp: time.Now(),
		})
	}

	deadline := time.After(2 * time.Second)
	for repo.count() < 10 {
		select {
		case <-deadline:
			t.Fatalf("expected 10 persisted events, got %d", repo.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDispatcher_SameSubjectKeepsOrdering(t *testing.T) {
	repo := &memoryAuditRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	base := time.Now()
	for i := 0; i < 5; i++ {
		d.Record(domain.AccessEvent{
			Subject:   "u1",
			Path:      "/wallet",
			Decision:  domain.AccessUnauthorized,
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
		})
	}

	deadline := time.After(2 * time.Second)
	for repo.count() < 5 {
		select {
		case <-deadline:
			t.Fatalf("expected 5 persisted events, got %d", repo.count())
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Identical subject+path hashes to one shard, so arrival order holds.
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for i := 1; i < len(repo.events); i++ {
		if repo.events[i].Timestamp.Before(repo.events[i-1].Timestamp) {
			t.Fatalf("per-subject ordering violated at index %d", i)
		}
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, &memoryAuditRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
