package domain_test

import (
	"testing"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

func gemAt(name string, lat, lon float64, price domain.Price, tags ...domain.Tag) domain.Gem {
	return domain.Gem{
		Name:     name,
		Position: domain.GeoPoint{Lat: lat, Lon: lon},
		Tags:     tags,
		Price:    price,
	}
}

func names(gems []domain.Gem) []string {
	out := make([]string, len(gems))
	for i, g := range gems {
		out[i] = g.Name
	}
	return out
}

func TestApply_NoCriteriaPassesEverything(t *testing.T) {
	gems := []domain.Gem{
		gemAt("a", 40.73, -73.93, domain.PriceLow, domain.TagBreakfast),
		gemAt("b", 40.74, -73.94, "", domain.TagDinner),
	}

	got := domain.Apply(gems, domain.FilterCriteria{})
	if len(got) != 2 {
		t.Fatalf("expected all gems to pass, got %v", names(got))
	}
}

func TestApply_TagIntersection(t *testing.T) {
	joes := gemAt("Joe's Diner", 40.73, -73.93, domain.PriceLow, domain.TagBreakfast)
	gems := []domain.Gem{joes}

	if got := domain.Apply(gems, domain.FilterCriteria{Tags: []domain.Tag{domain.TagDinner}}); len(got) != 0 {
		t.Errorf("Dinner filter should exclude a Breakfast-only gem, got %v", names(got))
	}

	got := domain.Apply(gems, domain.FilterCriteria{Tags: []domain.Tag{domain.TagBreakfast}})
	if len(got) != 1 || got[0].Name != "Joe's Diner" {
		t.Errorf("Breakfast filter should match Joe's Diner, got %v", names(got))
	}
}

func TestApply_TagAtLeastOneMatch(t *testing.T) {
	g := gemAt("multi", 0, 0, "", domain.TagLunch, domain.TagCafe)

	// One of two criteria tags present on the gem is enough.
	got := domain.Apply([]domain.Gem{g}, domain.FilterCriteria{
		Tags: []domain.Tag{domain.TagBreakfast, domain.TagCafe},
	})
	if len(got) != 1 {
		t.Errorf("at-least-one-match semantics violated, got %v", names(got))
	}
}

func TestApply_PriceExactMatch(t *testing.T) {
	gems := []domain.Gem{
		gemAt("cheap", 0, 0, domain.PriceLow),
		gemAt("fancy", 0, 0, domain.PriceHigh),
		gemAt("unpriced", 0, 0, ""),
	}

	got := domain.Apply(gems, domain.FilterCriteria{Price: domain.PriceLow})
	if len(got) != 1 || got[0].Name != "cheap" {
		t.Errorf("price filter should match exactly, got %v", names(got))
	}

	// Unset criteria price passes everything, including unpriced gems.
	if got := domain.Apply(gems, domain.FilterCriteria{}); len(got) != 3 {
		t.Errorf("unset price must not filter, got %v", names(got))
	}
}

func TestApply_RadiusExample(t *testing.T) {
	center := domain.GeoPoint{Lat: 40.73, Lon: -73.93}
	// ~2 miles north of the center.
	gem := gemAt("two miles out", 40.759, -73.93, "")

	oneMile := domain.ParseRadiusMiles("1")
	got := domain.Apply([]domain.Gem{gem}, domain.FilterCriteria{Center: &center, RadiusMiles: oneMile})
	if len(got) != 0 {
		t.Errorf("gem 2 miles away must be excluded by a 1 mile radius")
	}

	fiveMiles := domain.ParseRadiusMiles("5")
	got = domain.Apply([]domain.Gem{gem}, domain.FilterCriteria{Center: &center, RadiusMiles: fiveMiles})
	if len(got) != 1 {
		t.Errorf("gem 2 miles away must be included by a 5 mile radius")
	}
}

func TestApply_NonNumericRadiusDisablesDistance(t *testing.T) {
	center := domain.GeoPoint{Lat: 40.73, Lon: -73.93}
	gem := gemAt("far away", 51.5, -0.12, "") // London

	criteria := domain.FilterCriteria{Center: &center, RadiusMiles: domain.ParseRadiusMiles("abc")}
	if got := domain.Apply([]domain.Gem{gem}, criteria); len(got) != 1 {
		t.Errorf("non-numeric radius must disable the distance clause")
	}
}

func TestApply_CenterWithoutRadiusDisablesDistance(t *testing.T) {
	center := domain.GeoPoint{Lat: 40.73, Lon: -73.93}
	gem := gemAt("far away", 51.5, -0.12, "")

	criteria := domain.FilterCriteria{Center: &center}
	if got := domain.Apply([]domain.Gem{gem}, criteria); len(got) != 1 {
		t.Errorf("a center without a radius must not filter")
	}
}

func TestApply_CompositeAND(t *testing.T) {
	center := domain.GeoPoint{Lat: 40.73, Lon: -73.93}
	radius := domain.ParseRadiusMiles("5")

	// Right tags and price, but too far: must be excluded.
	far := gemAt("far", 41.5, -73.93, domain.PriceLow, domain.TagBreakfast)
	// Close and cheap, but wrong tag: must be excluded.
	wrongTag := gemAt("wrong tag", 40.731, -73.931, domain.PriceLow, domain.TagDinner)
	// Close with the right tag, but wrong price: must be excluded.
	wrongPrice := gemAt("wrong price", 40.731, -73.931, domain.PriceHigh, domain.TagBreakfast)
	// Passes all three clauses.
	keeper := gemAt("keeper", 40.732, -73.932, domain.PriceLow, domain.TagBreakfast)

	got := domain.Apply(
		[]domain.Gem{far, wrongTag, wrongPrice, keeper},
		domain.FilterCriteria{
			Center:      &center,
			RadiusMiles: radius,
			Tags:        []domain.Tag{domain.TagBreakfast},
			Price:       domain.PriceLow,
		},
	)
	if len(got) != 1 || got[0].Name != "keeper" {
		t.Errorf("composite AND violated, got %v", names(got))
	}
}

func TestApply_NarrowingRadiusNeverGrowsResult(t *testing.T) {
	center := domain.GeoPoint{Lat: 40.73, Lon: -73.93}
	gems := []domain.Gem{
		gemAt("near", 40.731, -73.931, ""),
		gemAt("mid", 40.759, -73.93, ""),
		gemAt("far", 41.0, -73.93, ""),
	}

	prev := len(gems) + 1
	for _, raw := range []string{"50", "5", "1", "0.1"} {
		criteria := domain.FilterCriteria{Center: &center, RadiusMiles: domain.ParseRadiusMiles(raw)}
		n := len(domain.Apply(gems, criteria))
		if n > prev {
			t.Fatalf("narrowing radius to %s grew the result: %d > %d", raw, n, prev)
		}
		prev = n
	}
}

func TestApply_PreservesCatalogOrder(t *testing.T) {
	gems := []domain.Gem{
		gemAt("1", 0, 0, "", domain.TagCafe),
		gemAt("2", 0, 0, "", domain.TagDinner),
		gemAt("3", 0, 0, "", domain.TagCafe),
	}

	got := domain.Apply(gems, domain.FilterCriteria{Tags: []domain.Tag{domain.TagCafe}})
	if len(got) != 2 || got[0].Name != "1" || got[1].Name != "3" {
		t.Errorf("relative order must be preserved, got %v", names(got))
	}
}

func TestParseRadiusMiles(t *testing.T) {
	if r := domain.ParseRadiusMiles("2.5"); r == nil || *r != 2.5 {
		t.Errorf("expected 2.5, got %v", r)
	}
	for _, raw := range []string{"", "  ", "abc", "-1", "0"} {
		if r := domain.ParseRadiusMiles(raw); r != nil {
			t.Errorf("input %q must disable the radius, got %v", raw, *r)
		}
	}
}
