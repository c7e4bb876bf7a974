package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmerino/hiddengems/internal/core/domain"
	"github.com/jmerino/hiddengems/internal/core/ports"
	"github.com/jmerino/hiddengems/internal/pkg/metrics"
)

// GemService owns the shared gem catalog and fans mutations out to the
// optional persistence sink and event broker. Repo and publisher may both
// be nil; the catalog then lives purely in memory, which is the default
// deployment.
type GemService struct {
	catalog   *domain.Catalog
	repo      ports.GemRepository
	publisher ports.EventPublisher

	// Snapshots are numbered at capture time and commit newest-first wins:
	// written only moves forward, so a slow older write can never overwrite
	// a newer one in the store.
	snapMu  sync.Mutex
	seq     uint64
	writeMu sync.Mutex
	written uint64
}

// NewGemService creates a GemService around an existing catalog.
func NewGemService(catalog *domain.Catalog, repo ports.GemRepository, publisher ports.EventPublisher) *GemService {
	return &GemService{catalog: catalog, repo: repo, publisher: publisher}
}

// Load replaces the catalog with the persisted gem list. Called once at
// startup, before any events are accepted.
func (s *GemService) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	gems, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load gems: %w", err)
	}
	s.catalog.Restore(gems)
	slog.Info("gem catalog restored", "count", len(gems))
	return nil
}

// Add validates and appends a new gem at the given position.
func (s *GemService) Add(ctx context.Context, position domain.GeoPoint, fields domain.GemFields) (domain.Gem, error) {
	if err := fields.Validate(); err != nil {
		metrics.GemValidationFailures.Inc()
		return domain.Gem{}, err
	}
	gem := s.catalog.Add(position, fields)
	metrics.GemsAdded.Inc()

	s.persist()
	if s.publisher != nil {
		if err := s.publisher.PublishGemAdded(ctx, gem); err != nil {
			slog.Warn("publish gem added", "gem_id", gem.ID, "error", err)
		}
	}
	return gem, nil
}

// Update replaces the editable fields of an existing gem; its position is
// fixed at add time and never changes.
func (s *GemService) Update(ctx context.Context, id uint64, fields domain.GemFields) (domain.Gem, error) {
	if err := fields.Validate(); err != nil {
		metrics.GemValidationFailures.Inc()
		return domain.Gem{}, err
	}
	gem, err := s.catalog.Update(id, fields)
	if err != nil {
		return domain.Gem{}, err
	}
	metrics.GemsUpdated.Inc()

	s.persist()
	if s.publisher != nil {
		if err := s.publisher.PublishGemUpdated(ctx, gem); err != nil {
			slog.Warn("publish gem updated", "gem_id", gem.ID, "error", err)
		}
	}
	return gem, nil
}

// Remove deletes a gem by id. The confirmation prompt lives at the render
// boundary; a call here is already final.
func (s *GemService) Remove(ctx context.Context, id uint64) (domain.Gem, error) {
	gem, err := s.catalog.Remove(id)
	if err != nil {
		return domain.Gem{}, err
	}
	metrics.GemsRemoved.Inc()

	s.persist()
	if s.publisher != nil {
		if err := s.publisher.PublishGemRemoved(ctx, gem); err != nil {
			slog.Warn("publish gem removed", "gem_id", gem.ID, "error", err)
		}
	}
	return gem, nil
}

// Get returns a single gem.
func (s *GemService) Get(ctx context.Context, id uint64) (domain.Gem, error) {
	return s.catalog.Get(id)
}

// List returns the full catalog in insertion order.
func (s *GemService) List(ctx context.Context) []domain.Gem {
	return s.catalog.List()
}

// persist re-upserts the full gem list to the sink, fire and forget. The
// catalog is the source of truth; a failed write only costs durability.
// Writes are serialized and stale snapshots are dropped, so the store
// always ends up holding the newest snapshot even when writes race.
func (s *GemService) persist() {
	if s.repo == nil {
		return
	}
	s.snapMu.Lock()
	s.seq++
	gen := s.seq
	gems := s.catalog.List()
	s.snapMu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if gen <= s.written {
			// A newer snapshot already landed.
			return
		}
		if err := s.repo.ReplaceAll(ctx, gems); err != nil {
			slog.Warn("persist gem catalog", "count", len(gems), "error", err)
			return
		}
		s.written = gen
	}()
}
