package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

// criteriaFromQuery builds filter criteria from query parameters. The
// radius is parsed leniently: non-numeric input disables the distance
// clause rather than failing the request, matching the filter-control
// behaviour on the map surface.
func criteriaFromQuery(c *fiber.Ctx) domain.FilterCriteria {
	var criteria domain.FilterCriteria

	if raw := c.Query("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				criteria.Tags = append(criteria.Tags, domain.Tag(t))
			}
		}
	}

	criteria.Price = domain.Price(c.Query("price"))

	latRaw, lonRaw := c.Query("center_lat"), c.Query("center_lon")
	if latRaw != "" && lonRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lon, errLon := strconv.ParseFloat(lonRaw, 64)
		if errLat == nil && errLon == nil {
			criteria.Center = &domain.GeoPoint{Lat: lat, Lon: lon}
		}
	}

	criteria.RadiusMiles = domain.ParseRadiusMiles(c.Query("radius_miles"))

	return criteria
}

// ListGemsHandler returns the catalog filtered by tag, price, and radius
// query parameters, paginated.
func ListGemsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		gems := deps.Queries.Filtered(c.Context(), criteriaFromQuery(c))

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		total := len(gems)
		if offset >= total {
			// Keep "data" a JSON array even past the last page.
			gems = []domain.Gem{}
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			gems = gems[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: gems, Pagination: pg})
	}
}

// GetGemHandler returns a single gem by id.
func GetGemHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return errBadRequest(c, "gem id must be a positive integer")
		}
		gem, err := deps.Gems.Get(c.Context(), id)
		if err != nil {
			return errNotFound(c, "gem not found")
		}
		return c.JSON(gem)
	}
}

// NearbyGemsHandler returns gems within a radius of a point, nearest first.
func NearbyGemsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Presence check, not a zero check: (0,0) is a valid coordinate.
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}

		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 50)
		if radius <= 0 || radius > 100000 {
			return errBadRequest(c, "radius must be between 1 and 100000 meters")
		}

		gems, err := deps.Queries.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(gems)
	}
}

// BoundsGemsHandler returns gems inside a map viewport.
func BoundsGemsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds := domain.Bounds{
			MinLat: c.QueryFloat("min_lat", 0),
			MinLon: c.QueryFloat("min_lon", 0),
			MaxLat: c.QueryFloat("max_lat", 0),
			MaxLon: c.QueryFloat("max_lon", 0),
		}
		if bounds.MinLat > bounds.MaxLat || bounds.MinLon > bounds.MaxLon {
			return errBadRequest(c, "bounds min must not exceed max")
		}
		return c.JSON(deps.Queries.InBounds(c.Context(), bounds))
	}
}
