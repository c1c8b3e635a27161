// Package chat defines the use-case commands accepted by the chat service.
package chat

import (
	"tutor-chat/domain"
)

// SendMessageCommand carries one message sending intent. The receiver
// fields are declarative; the service resolves the authoritative receiver
// from the conversation's participants and rejects a mismatch.
type SendMessageCommand struct {
	ConversationID string
	SenderID       string
	SenderRole     domain.Role
	ReceiverID     string
	ReceiverRole   domain.Role
	Content        string
	MessageType    domain.MessageType
	Attachments    []domain.Attachment
}
