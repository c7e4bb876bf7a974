package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

// Subjects for catalog mutation events. Connected map sessions relay these
// to their clients so everyone sees new pins without polling.
const (
	subjectAdded   = "gems.added."
	subjectUpdated = "gems.updated."
	subjectRemoved = "gems.removed."
)

// gemEvent is the JSON payload published for every catalog mutation.
type gemEvent struct {
	Kind string     `json:"kind"` // "added" | "updated" | "removed"
	Gem  domain.Gem `json:"gem"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the gem event stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "GEM_EVENTS",
		Subjects:  []string{"gems.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) publish(subject string, ev gemEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject+strconv.FormatUint(ev.Gem.ID, 10), data)
	return err
}

func (p *Publisher) PublishGemAdded(ctx context.Context, gem domain.Gem) error {
	return p.publish(subjectAdded, gemEvent{Kind: "added", Gem: gem})
}

func (p *Publisher) PublishGemUpdated(ctx context.Context, gem domain.Gem) error {
	return p.publish(subjectUpdated, gemEvent{Kind: "updated", Gem: gem})
}

func (p *Publisher) PublishGemRemoved(ctx context.Context, gem domain.Gem) error {
	return p.publish(subjectRemoved, gemEvent{Kind: "removed", Gem: gem})
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("gems.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (the WebSocket
// relay needs its own).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
