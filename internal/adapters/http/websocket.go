package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/jmerino/hiddengems/internal/core/domain"
	"github.com/jmerino/hiddengems/internal/core/session"
	"github.com/jmerino/hiddengems/internal/core/usecases"
	"github.com/jmerino/hiddengems/internal/pkg/metrics"
)

// wsEvent is a discrete user event from the map surface. Exactly one
// session per connection consumes these, one at a time, so every state
// transition runs to completion before the next event is read.
type wsEvent struct {
	Event       string       `json:"event"`
	Lat         float64      `json:"lat,omitempty"`
	Lon         float64      `json:"lon,omitempty"`
	GemID       uint64       `json:"gem_id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Tags        []domain.Tag `json:"tags,omitempty"`
	Price       domain.Price `json:"price,omitempty"`
	RadiusMiles string       `json:"radius_miles,omitempty"`
}

func (e wsEvent) fields() domain.GemFields {
	return domain.GemFields{
		Name:        e.Name,
		Description: e.Description,
		Tags:        e.Tags,
		Price:       e.Price,
	}
}

// wsReply is a server-to-client frame: the refreshed view after an event,
// a user-visible notice, or a non-fatal error (input retained client-side
// for correction).
type wsReply struct {
	Type     string            `json:"type"` // "view" | "notice" | "error" | "gem_event"
	Message  string            `json:"message,omitempty"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Raw      json.RawMessage   `json:"raw,omitempty"`
}

// WebSocketHandler runs one interaction session per connection: it routes
// map clicks through the mode dispatcher, manages the pending capture, and
// pushes the recomputed filtered view after every event. Catalog mutations
// from other sessions arrive over NATS and are relayed as gem_event frames.
func WebSocketHandler(gems *usecases.GemService, nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("map session connected", "remote", remoteAddr)
		metrics.ActiveSessions.Inc()
		defer metrics.ActiveSessions.Dec()

		sess := session.New(gems)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Relay other sessions' catalog mutations.
		var sub *nats.Subscription
		if nc != nil {
			var err error
			sub, err = nc.Subscribe("gems.>", func(msg *nats.Msg) {
				_ = writeJSON(wsReply{Type: "gem_event", Raw: json.RawMessage(msg.Data)})
			})
			if err != nil {
				slog.Warn("gem event subscribe", "error", err)
			}
		}
		defer func() {
			if sub != nil {
				_ = sub.Unsubscribe()
			}
		}()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		ctx := context.Background()

		// Initial view so the client can draw before the first event.
		snap := sess.View(ctx)
		_ = writeJSON(wsReply{Type: "view", Snapshot: &snap})

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var ev wsEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				_ = writeJSON(wsReply{Type: "error", Message: "invalid JSON"})
				continue
			}

			if notice, err := dispatch(ctx, sess, ev); err != nil {
				// Failed operations leave prior state unchanged; the
				// capture (if any) stays open for correction.
				_ = writeJSON(wsReply{Type: "error", Message: err.Error()})
			} else if notice != "" {
				_ = writeJSON(wsReply{Type: "notice", Message: notice})
			}

			snap := sess.View(ctx)
			_ = writeJSON(wsReply{Type: "view", Snapshot: &snap})
		}

		slog.Info("map session disconnected", "remote", remoteAddr)
	}
}

// dispatch routes one event into the session state machine and returns an
// optional user-visible notice.
func dispatch(ctx context.Context, sess *session.Session, ev wsEvent) (string, error) {
	switch ev.Event {
	case "map_clicked":
		res := sess.MapClicked(domain.GeoPoint{Lat: ev.Lat, Lon: ev.Lon})
		return res.Message, nil

	case "set_filter_center":
		sess.RequestSetFilterCenter()
		return "Click on the map to set filter center.", nil

	case "filter_changed":
		// Carries the full filter form state, not a patch: omitted fields
		// clear their clause.
		sess.SetFilter(ev.Tags, ev.Price, ev.RadiusMiles)
		return "", nil

	case "confirm_add":
		_, err := sess.ConfirmAdd(ctx, ev.fields())
		return "", err

	case "start_edit":
		return "", sess.StartEdit(ctx, ev.GemID)

	case "confirm_edit":
		_, err := sess.ConfirmEdit(ctx, ev.GemID, ev.fields())
		return "", err

	case "cancel":
		sess.Cancel()
		return "", nil

	case "delete_gem":
		// The yes/no prompt runs on the client; this is the final word.
		return "", sess.DeleteGem(ctx, ev.GemID)

	case "view":
		return "", nil

	default:
		return "", errors.New("unknown event: " + ev.Event)
	}
}
