// Package sink adapts live-connection transports to the EventSink contract.
package sink

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"

	"tutor-chat/domain/event"
)

// Envelope is the wire shape of a pushed event.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Ws bridges the dispatcher and one websocket connection. Consume never
// writes to the socket directly; events land in a bounded channel drained
// by a single writer goroutine, keeping websocket writes serialized.
// When the buffer is full the event is dropped, which is acceptable for a
// best-effort notify channel.
type Ws struct {
	log    *slog.Logger
	events chan event.DomainEvent
}

func NewWs(log *slog.Logger, bufferSize int) *Ws {
	return &Ws{
		log:    log,
		events: make(chan event.DomainEvent, bufferSize),
	}
}

// Consume implements contract.EventSink.
func (s *Ws) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Debug("connection buffer full, dropping event",
			"event", e.Name(), "receiver", e.Receiver())
		return nil
	}
}

// WritePump forwards buffered events to the websocket until the context
// is canceled or a write fails. It owns all writes to conn.
func (s *Ws) WritePump(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.events:
			payload, err := json.Marshal(Envelope{Event: evt.Name(), Data: evt})
			if err != nil {
				s.log.Error("failed to encode event", "event", evt.Name(), "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.log.Warn("websocket write failed, stopping pump", "error", err)
				return
			}
		}
	}
}
