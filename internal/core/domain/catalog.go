package domain

import (
	"sync"
	"time"
)

// Catalog is the in-memory collection of gems. Each gem gets a stable,
// monotonically increasing id at insertion; the visible list preserves
// insertion order. Ids never shift on removal, so a stale id fails with
// ErrGemNotFound instead of silently hitting a neighbour.
type Catalog struct {
	mu     sync.RWMutex
	nextID uint64
	order  []uint64
	gems   map[uint64]Gem
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{nextID: 1, gems: make(map[uint64]Gem)}
}

// Add appends a gem and returns its id. Position and fields are taken as
// given; field validation happens at the capture boundary.
func (c *Catalog) Add(position GeoPoint, fields GemFields) Gem {
	c.mu.Lock()
	defer c.mu.Unlock()

	gem := Gem{
		ID:          c.nextID,
		Position:    position,
		Name:        fields.Name,
		Description: fields.Description,
		Tags:        fields.NormalizedTags(),
		Price:       fields.Price,
		CreatedAt:   time.Now().UTC(),
	}
	c.nextID++
	c.order = append(c.order, gem.ID)
	c.gems[gem.ID] = gem
	return gem
}

// Update replaces the editable fields of an existing gem. The position and
// creation time are kept from the stored gem.
func (c *Catalog) Update(id uint64, fields GemFields) (Gem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gem, ok := c.gems[id]
	if !ok {
		return Gem{}, ErrGemNotFound
	}
	gem.Name = fields.Name
	gem.Description = fields.Description
	gem.Tags = fields.NormalizedTags()
	gem.Price = fields.Price
	c.gems[id] = gem
	return gem, nil
}

// Remove deletes a gem by id.
func (c *Catalog) Remove(id uint64) (Gem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gem, ok := c.gems[id]
	if !ok {
		return Gem{}, ErrGemNotFound
	}
	delete(c.gems, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return gem, nil
}

// Get returns a gem by id.
func (c *Catalog) Get(id uint64) (Gem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	gem, ok := c.gems[id]
	if !ok {
		return Gem{}, ErrGemNotFound
	}
	return gem, nil
}

// List returns a snapshot of all gems in insertion order.
func (c *Catalog) List() []Gem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Gem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.gems[id])
	}
	return out
}

// Len returns the number of gems.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Restore replaces the catalog contents with a previously persisted list,
// keeping the given ids and continuing id assignment above the largest one.
// Used once at startup before the catalog accepts events.
func (c *Catalog) Restore(gems []Gem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = c.order[:0]
	c.gems = make(map[uint64]Gem, len(gems))
	c.nextID = 1
	for _, g := range gems {
		c.order = append(c.order, g.ID)
		c.gems[g.ID] = g
		if g.ID >= c.nextID {
			c.nextID = g.ID + 1
		}
	}
}
