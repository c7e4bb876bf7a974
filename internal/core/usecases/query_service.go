package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jmerino/hiddengems/internal/core/domain"
	"github.com/jmerino/hiddengems/internal/core/ports"
	"github.com/jmerino/hiddengems/internal/pkg/geospatial"
	"github.com/jmerino/hiddengems/internal/pkg/metrics"
)

// QueryService serves read-only gem views for the REST and GraphQL
// surfaces. Unlike the per-session filter path, which recomputes on every
// event by contract, these presentation queries may be cached.
type QueryService struct {
	gems  *GemService
	cache ports.CacheService
}

// NewQueryService creates a QueryService. cache may be nil.
func NewQueryService(gems *GemService, cache ports.CacheService) *QueryService {
	return &QueryService{gems: gems, cache: cache}
}

// Filtered applies the criteria to the current catalog, preserving
// insertion order.
func (s *QueryService) Filtered(ctx context.Context, criteria domain.FilterCriteria) []domain.Gem {
	metrics.FilterApplies.Inc()
	return domain.Apply(s.gems.List(ctx), criteria)
}

// NearbyGem is a gem with its computed distance from the query point.
type NearbyGem struct {
	domain.Gem
	DistanceMeters float64 `json:"distance_meters"`
}

// FindNearby returns gems within radiusMeters of a point, nearest first.
func (s *QueryService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]NearbyGem, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("gems:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var gems []NearbyGem
			if err := json.Unmarshal(data, &gems); err == nil {
				metrics.CacheHits.WithLabelValues("gems_nearby").Inc()
				return gems, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("gems_nearby").Inc()
	}

	// Cheap box prefilter before the exact haversine check.
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	box := domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}

	var out []NearbyGem
	for _, g := range s.gems.List(ctx) {
		if !box.Contains(g.Position) {
			continue
		}
		d := geospatial.Haversine(lat, lon, g.Position.Lat, g.Position.Lon)
		if d <= radiusMeters {
			out = append(out, NearbyGem{Gem: g, DistanceMeters: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	if len(out) > limit {
		out = out[:limit]
	}

	// Short TTL: the catalog mutates rarely but the map pans often.
	if s.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return out, nil
}

// InBounds returns the gems inside a map viewport, in insertion order.
func (s *QueryService) InBounds(ctx context.Context, bounds domain.Bounds) []domain.Gem {
	var out []domain.Gem
	for _, g := range s.gems.List(ctx) {
		if bounds.Contains(g.Position) {
			out = append(out, g)
		}
	}
	return out
}
