// Package session implements the interaction state machine behind the map
// surface: which semantic action the next click performs, the at-most-one
// in-flight gem capture, and the filter criteria for the session's view.
//
// A Session is owned by exactly one render connection and is driven by one
// event at a time; it deliberately carries no locking of its own. The shared
// catalog behind it is safe for concurrent sessions.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

// Mode is the interaction mode deciding what a map click means.
type Mode string

const (
	// ModeIdle: a click opens an add-gem capture at the clicked point.
	ModeIdle Mode = "idle"
	// ModeAwaitingFilterCenter: the next click sets the filter center.
	ModeAwaitingFilterCenter Mode = "awaiting_filter_center"
)

// CaptureKind distinguishes a new-gem capture from an edit of an existing one.
type CaptureKind string

const (
	CaptureAdd  CaptureKind = "add"
	CaptureEdit CaptureKind = "edit"
)

// PendingCapture is the transient, unconfirmed add or edit in progress.
// At most one exists per session; a newer capture silently replaces an
// older one.
type PendingCapture struct {
	Kind     CaptureKind     `json:"kind"`
	Position domain.GeoPoint `json:"position,omitempty"`
	GemID    uint64          `json:"gem_id,omitempty"`
}

// ViewState tells the render boundary whether a gem popup should show the
// read view or the edit form.
type ViewState struct {
	Kind  ViewKind `json:"kind"`
	GemID uint64   `json:"gem_id,omitempty"`
}

type ViewKind string

const (
	ViewViewing ViewKind = "viewing"
	ViewEditing ViewKind = "editing"
)

// ErrNoPendingCapture reports a confirm or cancel arriving without an open
// capture. Should not happen with a well-behaved client; the operation is
// simply refused.
var ErrNoPendingCapture = errors.New("no pending capture")

// Catalog is the slice of the gem service a session needs.
type Catalog interface {
	Add(ctx context.Context, position domain.GeoPoint, fields domain.GemFields) (domain.Gem, error)
	Update(ctx context.Context, id uint64, fields domain.GemFields) (domain.Gem, error)
	Remove(ctx context.Context, id uint64) (domain.Gem, error)
	List(ctx context.Context) []domain.Gem
}

// Session holds one client's interaction state against the shared catalog.
type Session struct {
	catalog  Catalog
	mode     Mode
	capture  *PendingCapture
	view     ViewState
	criteria domain.FilterCriteria
}

// New creates an idle session with no active filter.
func New(catalog Catalog) *Session {
	return &Session{
		catalog: catalog,
		mode:    ModeIdle,
		view:    ViewState{Kind: ViewViewing},
	}
}

// ClickResult reports what a map click did, so the render boundary can
// confirm it to the user.
type ClickResult struct {
	// FilterCenterSet is true when the click was consumed as the new
	// filter center.
	FilterCenterSet bool
	// Message is a user-visible confirmation. Coordinates are rounded for
	// display only; the stored value keeps full precision.
	Message string
	// Capture is the add capture opened by the click, if any.
	Capture *PendingCapture
}

// MapClicked routes a click to exactly one action: set the filter center
// (when armed) or open an add-gem capture at the clicked point.
func (s *Session) MapClicked(coord domain.GeoPoint) ClickResult {
	if s.mode == ModeAwaitingFilterCenter {
		center := coord
		s.criteria.Center = &center
		s.mode = ModeIdle
		return ClickResult{
			FilterCenterSet: true,
			Message:         fmt.Sprintf("Filter center set at: %.4f, %.4f", coord.Lat, coord.Lon),
		}
	}

	capture := &PendingCapture{Kind: CaptureAdd, Position: coord}
	s.capture = capture
	return ClickResult{Capture: capture}
}

// RequestSetFilterCenter arms the next map click to become the filter
// center. Allowed at any time, including while a capture is open.
func (s *Session) RequestSetFilterCenter() {
	s.mode = ModeAwaitingFilterCenter
}

// SetFilter replaces the tag, price, and radius criteria wholesale; the
// filter control submits its full state on every change, so an omitted
// field means "cleared", not "unchanged". The center is set separately by
// an armed map click and survives this call. The radius comes in as raw
// text from the filter control; non-numeric or empty input disables
// distance filtering rather than erroring.
func (s *Session) SetFilter(tags []domain.Tag, price domain.Price, radiusMilesRaw string) {
	s.criteria.Tags = tags
	s.criteria.Price = price
	s.criteria.RadiusMiles = domain.ParseRadiusMiles(radiusMilesRaw)
}

// StartEdit opens an edit capture for an existing gem, replacing any
// capture already open.
func (s *Session) StartEdit(ctx context.Context, id uint64) error {
	gems := s.catalog.List(ctx)
	found := false
	for _, g := range gems {
		if g.ID == id {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrGemNotFound
	}
	s.capture = &PendingCapture{Kind: CaptureEdit, GemID: id}
	s.view = ViewState{Kind: ViewEditing, GemID: id}
	return nil
}

// ConfirmAdd validates the captured fields and appends the gem at the
// capture position. On a validation error the capture stays open so the
// user can correct the form.
func (s *Session) ConfirmAdd(ctx context.Context, fields domain.GemFields) (domain.Gem, error) {
	if s.capture == nil || s.capture.Kind != CaptureAdd {
		return domain.Gem{}, ErrNoPendingCapture
	}
	if err := fields.Validate(); err != nil {
		return domain.Gem{}, err
	}
	gem, err := s.catalog.Add(ctx, s.capture.Position, fields)
	if err != nil {
		return domain.Gem{}, err
	}
	s.capture = nil
	return gem, nil
}

// ConfirmEdit validates the fields and replaces the gem's editable fields
// in place; the position never changes. The capture stays open on a
// validation error.
func (s *Session) ConfirmEdit(ctx context.Context, id uint64, fields domain.GemFields) (domain.Gem, error) {
	if s.capture == nil || s.capture.Kind != CaptureEdit {
		return domain.Gem{}, ErrNoPendingCapture
	}
	if err := fields.Validate(); err != nil {
		return domain.Gem{}, err
	}
	gem, err := s.catalog.Update(ctx, id, fields)
	if err != nil {
		return domain.Gem{}, err
	}
	s.capture = nil
	s.view = ViewState{Kind: ViewViewing}
	return gem, nil
}

// Cancel discards the open capture unconditionally.
func (s *Session) Cancel() {
	s.capture = nil
	s.view = ViewState{Kind: ViewViewing}
}

// DeleteGem removes a gem. The yes/no confirmation prompt is owned by the
// render boundary; by the time this runs the decision is final.
func (s *Session) DeleteGem(ctx context.Context, id uint64) error {
	_, err := s.catalog.Remove(ctx, id)
	return err
}

// Snapshot is what the render boundary needs to draw the map.
type Snapshot struct {
	Mode     Mode                  `json:"mode"`
	Capture  *PendingCapture       `json:"capture,omitempty"`
	View     ViewState             `json:"view"`
	Criteria domain.FilterCriteria `json:"criteria"`
	Gems     []domain.Gem          `json:"gems"`
}

// View recomputes the filtered gem list from the live catalog and returns
// the full interaction snapshot. No caching: the criteria or catalog may
// have changed since the last event.
func (s *Session) View(ctx context.Context) Snapshot {
	return Snapshot{
		Mode:     s.mode,
		Capture:  s.capture,
		View:     s.view,
		Criteria: s.criteria,
		Gems:     domain.Apply(s.catalog.List(ctx), s.criteria),
	}
}

// Mode exposes the current interaction mode.
func (s *Session) CurrentMode() Mode { return s.mode }

// Capture exposes the open capture, or nil.
func (s *Session) Capture() *PendingCapture { return s.capture }

// Criteria exposes the active filter criteria.
func (s *Session) Criteria() domain.FilterCriteria { return s.criteria }
