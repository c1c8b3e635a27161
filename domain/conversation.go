package domain

import (
	"fmt"
	"time"
)

// ConversationType is the relationship shape of a thread.
// Only the student/educator pair exists today; the type is kept open
// so new shapes do not require a schema change.
type ConversationType string

const ConversationStudentEducator ConversationType = "student_educator"

// Conversation is a durable two-party messaging thread.
// Participants are ordered [student, educator] for the
// student_educator type.
type Conversation struct {
	ID            string           `json:"id"`
	Type          ConversationType `json:"type"`
	Participants  []Participant    `json:"participants"`
	IsActive      bool             `json:"is_active"`
	LastMessageID string           `json:"last_message_id,omitempty"`
	LastMessageAt *time.Time       `json:"last_message_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// PairKey builds the canonical unordered-pair identity for a
// student/educator conversation. Both argument orders yield the same key,
// which is what makes lazy creation idempotent.
func PairKey(studentID, educatorID string) string {
	a, b := studentID, educatorID
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s", a, b)
}

// IsParticipant reports membership by identifier equality only, tolerating
// participants whose profile has or has not been expanded.
func (c Conversation) IsParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.Is(userID) {
			return true
		}
	}
	return false
}

// Counterpart returns the other participant of a two-party conversation.
func (c Conversation) Counterpart(userID string) (Participant, bool) {
	for _, p := range c.Participants {
		if !p.Is(userID) {
			return p, true
		}
	}
	return Participant{}, false
}

// ByRole returns the participant holding the given role.
func (c Conversation) ByRole(role Role) (Participant, bool) {
	for _, p := range c.Participants {
		if p.Role == role {
			return p, true
		}
	}
	return Participant{}, false
}
