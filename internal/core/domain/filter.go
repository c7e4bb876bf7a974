package domain

import (
	"strconv"
	"strings"

	"github.com/jmerino/hiddengems/internal/pkg/geospatial"
)

// FilterCriteria narrows the visible gem set. Every clause is optional:
// a nil center or radius disables the distance clause, an empty tag set
// passes all gems, and an unset price passes all gems.
type FilterCriteria struct {
	Center      *GeoPoint `json:"center,omitempty"`
	RadiusMiles *float64  `json:"radius_miles,omitempty"`
	Tags        []Tag     `json:"tags,omitempty"`
	Price       Price     `json:"price,omitempty"`
}

// ParseRadiusMiles converts the raw radius text from a filter control into
// an optional radius. Empty or non-numeric input disables distance
// filtering entirely; it is not an error.
func ParseRadiusMiles(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	miles, err := strconv.ParseFloat(raw, 64)
	if err != nil || miles <= 0 {
		return nil
	}
	return &miles
}

// distanceActive reports whether the distance clause participates in
// filtering: both a center and a parsed radius must be present.
func (c FilterCriteria) distanceActive() bool {
	return c.Center != nil && c.RadiusMiles != nil
}

// Matches reports whether a single gem passes every active clause.
func (c FilterCriteria) Matches(g Gem) bool {
	if c.distanceActive() {
		d := geospatial.Haversine(c.Center.Lat, c.Center.Lon, g.Position.Lat, g.Position.Lon)
		if d > geospatial.MilesToMeters(*c.RadiusMiles) {
			return false
		}
	}

	if len(c.Tags) > 0 {
		match := false
		for _, t := range c.Tags {
			if g.HasTag(t) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}

	if c.Price != PriceUnset && g.Price != c.Price {
		return false
	}

	return true
}

// Apply filters gems against the criteria, preserving relative order.
// It recomputes from scratch on every call; the catalog is small enough
// that recompute-on-read is the whole strategy.
func Apply(gems []Gem, criteria FilterCriteria) []Gem {
	out := make([]Gem, 0, len(gems))
	for _, g := range gems {
		if criteria.Matches(g) {
			out = append(out, g)
		}
	}
	return out
}
