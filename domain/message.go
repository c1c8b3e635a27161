// This file defines Message entities and related rules.
// Messages are immutable except for the single read transition.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageType describes the payload carried by a message.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

// KnownMessageType reports whether t belongs to the supported vocabulary.
func KnownMessageType(t MessageType) bool {
	switch t {
	case MessageText, MessageImage, MessageFile:
		return true
	}
	return false
}

// Attachment is the descriptor returned by the upload collaborator.
type Attachment struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Message is a single chat event inside a conversation.
// ReadAt transitions from nil to a timestamp at most once,
// and only on behalf of the receiver.
type Message struct {
	ID             uuid.UUID    `json:"id"`
	ConversationID string       `json:"conversation_id"`
	Sender         Participant  `json:"sender"`
	Receiver       Participant  `json:"receiver"`
	Content        string       `json:"content"`
	MessageType    MessageType  `json:"message_type"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	ReadAt         *time.Time   `json:"read_at,omitempty"`
}

// IsRead reports whether the read transition already happened.
func (m Message) IsRead() bool {
	return m.ReadAt != nil
}
