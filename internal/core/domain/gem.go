package domain

import (
	"errors"
	"strings"
	"time"
)

// Tag is a category label drawn from a closed vocabulary.
type Tag string

const (
	TagBreakfast Tag = "Breakfast"
	TagLunch     Tag = "Lunch"
	TagDinner    Tag = "Dinner"
	TagCafe      Tag = "Cafe"
)

// Tags lists the full vocabulary, in display order.
var Tags = []Tag{TagBreakfast, TagLunch, TagDinner, TagCafe}

// Price is a price tier. The empty string means "unspecified" and is
// excluded from price-equality filtering.
type Price string

const (
	PriceUnset Price = ""
	PriceLow   Price = "$"
	PriceMid   Price = "$$"
	PriceHigh  Price = "$$$"
)

var (
	// ErrEmptyName rejects a gem whose trimmed name is empty. The pending
	// capture stays open so the user can correct the input.
	ErrEmptyName = errors.New("gem name must not be empty")

	// ErrGemNotFound reports a stale or unknown gem id.
	ErrGemNotFound = errors.New("gem not found")

	ErrInvalidTag   = errors.New("tag not in vocabulary")
	ErrInvalidPrice = errors.New("invalid price tier")
)

// Gem is a user-authored point of interest. Its position is fixed at
// creation time; edits replace every other field in place.
type Gem struct {
	ID          uint64    `json:"id"`
	Position    GeoPoint  `json:"position"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tags        []Tag     `json:"tags,omitempty"`
	Price       Price     `json:"price,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GemFields carries the user-editable fields of a gem, as captured by an
// add or edit form.
type GemFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tags        []Tag  `json:"tags"`
	Price       Price  `json:"price"`
}

// Validate checks the capture fields against the domain invariants:
// non-empty trimmed name, tags inside the vocabulary, known price tier.
func (f GemFields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	for _, t := range f.Tags {
		if !validTag(t) {
			return ErrInvalidTag
		}
	}
	switch f.Price {
	case PriceUnset, PriceLow, PriceMid, PriceHigh:
	default:
		return ErrInvalidPrice
	}
	return nil
}

// NormalizedTags returns the tags deduplicated and in vocabulary order.
// The capture surface toggles tags rather than appending, but events from
// the render boundary are not trusted to preserve that.
func (f GemFields) NormalizedTags() []Tag {
	present := make(map[Tag]bool, len(f.Tags))
	for _, t := range f.Tags {
		present[t] = true
	}
	var out []Tag
	for _, t := range Tags {
		if present[t] {
			out = append(out, t)
		}
	}
	return out
}

// HasTag reports whether the gem carries the given tag.
func (g Gem) HasTag(tag Tag) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func validTag(t Tag) bool {
	for _, v := range Tags {
		if t == v {
			return true
		}
	}
	return false
}
