// Package event defines the domain events pushed to live connections.
// Delivery is best-effort: events are a notification mechanism,
// never a durability mechanism.
package event

import (
	"time"

	"tutor-chat/domain"
)

// DomainEvent is anything the dispatcher can route to a connected user.
type DomainEvent interface {
	// Name is the wire-level event name.
	Name() string
	// Receiver is the user the event is addressed to.
	Receiver() string
}

// NewMessage notifies the receiver of a freshly persisted message.
type NewMessage struct {
	Message domain.Message `json:"message"`
}

func (e NewMessage) Name() string     { return "new_message" }
func (e NewMessage) Receiver() string { return e.Message.Receiver.ID() }

// MessageRead notifies the original sender that their message was read.
// Emitted only on an actual nil-to-timestamp transition; repeated read
// calls stay silent.
type MessageRead struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	ReaderID       string    `json:"reader_id"`
	SenderID       string    `json:"sender_id"`
	ReadAt         time.Time `json:"read_at"`
}

func (e MessageRead) Name() string     { return "message_read" }
func (e MessageRead) Receiver() string { return e.SenderID }
