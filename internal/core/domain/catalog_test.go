package domain_test

import (
	"errors"
	"testing"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

func TestCatalog_AddAssignsStableIDs(t *testing.T) {
	c := domain.NewCatalog()

	a := c.Add(domain.GeoPoint{Lat: 40.73, Lon: -73.93}, domain.GemFields{Name: "A"})
	b := c.Add(domain.GeoPoint{Lat: 40.74, Lon: -73.94}, domain.GemFields{Name: "B"})

	if a.ID == b.ID {
		t.Fatalf("ids must be unique, both %d", a.ID)
	}
	if b.ID <= a.ID {
		t.Errorf("ids must increase: %d then %d", a.ID, b.ID)
	}
}

func TestCatalog_ListPreservesInsertionOrder(t *testing.T) {
	c := domain.NewCatalog()
	for _, name := range []string{"first", "second", "third"} {
		c.Add(domain.GeoPoint{}, domain.GemFields{Name: name})
	}

	gems := c.List()
	if len(gems) != 3 {
		t.Fatalf("expected 3 gems, got %d", len(gems))
	}
	for i, want := range []string{"first", "second", "third"} {
		if gems[i].Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, gems[i].Name)
		}
	}
}

func TestCatalog_UpdateKeepsPosition(t *testing.T) {
	c := domain.NewCatalog()
	g := c.Add(domain.GeoPoint{Lat: 40.73, Lon: -73.93}, domain.GemFields{Name: "before"})

	updated, err := c.Update(g.ID, domain.GemFields{Name: "after", Price: domain.PriceMid})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Position != g.Position {
		t.Errorf("position changed on update: %v -> %v", g.Position, updated.Position)
	}
	if updated.Name != "after" || updated.Price != domain.PriceMid {
		t.Errorf("fields not replaced: %+v", updated)
	}
	if updated.ID != g.ID {
		t.Errorf("id changed on update: %d -> %d", g.ID, updated.ID)
	}
}

func TestCatalog_RemoveKeepsOtherIDsValid(t *testing.T) {
	c := domain.NewCatalog()
	a := c.Add(domain.GeoPoint{}, domain.GemFields{Name: "A"})
	b := c.Add(domain.GeoPoint{}, domain.GemFields{Name: "B"})
	z := c.Add(domain.GeoPoint{}, domain.GemFields{Name: "Z"})

	if _, err := c.Remove(b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Remaining ids still resolve; the removed one is gone for good.
	if _, err := c.Get(a.ID); err != nil {
		t.Errorf("id %d should survive a neighbour's removal: %v", a.ID, err)
	}
	if _, err := c.Get(z.ID); err != nil {
		t.Errorf("id %d should survive a neighbour's removal: %v", z.ID, err)
	}
	if _, err := c.Get(b.ID); !errors.Is(err, domain.ErrGemNotFound) {
		t.Errorf("removed id must report ErrGemNotFound, got %v", err)
	}

	gems := c.List()
	if len(gems) != 2 || gems[0].Name != "A" || gems[1].Name != "Z" {
		t.Errorf("unexpected list after removal: %+v", gems)
	}
}

func TestCatalog_StaleIDFails(t *testing.T) {
	c := domain.NewCatalog()
	if _, err := c.Update(42, domain.GemFields{Name: "x"}); !errors.Is(err, domain.ErrGemNotFound) {
		t.Errorf("expected ErrGemNotFound, got %v", err)
	}
	if _, err := c.Remove(42); !errors.Is(err, domain.ErrGemNotFound) {
		t.Errorf("expected ErrGemNotFound, got %v", err)
	}
}

func TestCatalog_RestoreContinuesIDSequence(t *testing.T) {
	c := domain.NewCatalog()
	c.Restore([]domain.Gem{
		{ID: 3, Name: "restored", Position: domain.GeoPoint{Lat: 1, Lon: 2}},
		{ID: 7, Name: "also restored"},
	})

	if c.Len() != 2 {
		t.Fatalf("expected 2 gems after restore, got %d", c.Len())
	}

	g := c.Add(domain.GeoPoint{}, domain.GemFields{Name: "new"})
	if g.ID <= 7 {
		t.Errorf("new id must continue above restored ids, got %d", g.ID)
	}
}
