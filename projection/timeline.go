// Package projection builds a local view of a conversation from observed
// events. It handles ordering, deduplication, and the read transition.
// It never emits events itself.
package projection

import (
	"sort"

	"tutor-chat/domain"
	"tutor-chat/domain/event"
)

// Timeline is the receiving side's local copy of one conversation,
// maintained purely from pushed events. Because delivery is best-effort,
// a timeline is a cache to render from, not a source of truth; gaps are
// filled by paging through stored history.
type Timeline struct {
	Owner          string
	ConversationID string
	Messages       []domain.Message

	seen map[string]int
}

func NewTimeline(owner, conversationID string) *Timeline {
	return &Timeline{
		Owner:          owner,
		ConversationID: conversationID,
		seen:           make(map[string]int),
	}
}

// Consume folds one pushed event into the timeline. Events for other
// conversations and duplicate deliveries are ignored.
func (t *Timeline) Consume(e event.DomainEvent) {
	switch evt := e.(type) {
	case event.NewMessage:
		t.add(evt.Message)
	case event.MessageRead:
		if evt.ConversationID != t.ConversationID {
			return
		}
		if i, ok := t.seen[evt.MessageID]; ok && !t.Messages[i].IsRead() {
			at := evt.ReadAt
			t.Messages[i].ReadAt = &at
		}
	}
}

// Unread counts the timeline's messages addressed to the owner that have
// not been read yet.
func (t *Timeline) Unread() int {
	count := 0
	for _, msg := range t.Messages {
		if msg.Receiver.Is(t.Owner) && !msg.IsRead() {
			count++
		}
	}
	return count
}

func (t *Timeline) add(msg domain.Message) {
	if msg.ConversationID != t.ConversationID {
		return
	}
	if _, ok := t.seen[msg.ID.String()]; ok {
		return
	}
	t.Messages = append(t.Messages, msg)

	sort.SliceStable(t.Messages, func(i, j int) bool {
		return t.Messages[i].CreatedAt.Before(t.Messages[j].CreatedAt)
	})
	for i, m := range t.Messages {
		t.seen[m.ID.String()] = i
	}
}
