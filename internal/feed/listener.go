// Package feed consumes the primary store's change feed and dispatches
// each event to the trigger handlers.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"caseboard/internal/content"
)

const channel = "content_events"

// Ops carried in a change-feed envelope.
const (
	OpCreate = "create"
	OpUpdate = "update"
)

// Event is one change-feed delivery. A create carries only the after
// snapshot; an update carries both.
type Event struct {
	Kind   content.Kind      `json:"kind"`
	Op     string            `json:"op"`
	ID     string            `json:"id"`
	Before *content.Snapshot `json:"before,omitempty"`
	After  content.Snapshot  `json:"after"`
}

// Handler reacts to one change-feed event. Delivery is at-least-once, so
// handlers must be safe to re-run.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// Listener holds the dedicated LISTEN connection to the primary store.
// NOTIFY ordering gives per-document ordering; nothing is guaranteed
// across documents.
type Listener struct {
	connString string
	handler    Handler
	retryDelay time.Duration
}

func NewListener(connString string, handler Handler) *Listener {
	return &Listener{
		connString: connString,
		handler:    handler,
		retryDelay: 5 * time.Second,
	}
}

// Run listens until ctx is cancelled, reconnecting after connection loss.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("feed: listener disconnected, retrying in %s: %v", l.retryDelay, err)
		select {
		case <-time.After(l.retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return fmt.Errorf("connect listener: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return fmt.Errorf("listen %s: %w", channel, err)
	}
	log.Printf("feed: listening on %s", channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.dispatch(ctx, notification.Payload)
	}
}

// dispatch decodes and handles one payload. Malformed payloads are dropped
// so a poison event cannot wedge the feed; handler errors are logged and
// the event is left to upstream redelivery.
func (l *Listener) dispatch(ctx context.Context, payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("feed: dropping malformed payload: %v", err)
		return
	}
	if err := l.handler.Handle(ctx, ev); err != nil {
		log.Printf("feed: handle %s %s %s: %v", ev.Op, ev.Kind, ev.ID, err)
	}
}
