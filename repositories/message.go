//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"tutor-chat/domain"
	apperrors "tutor-chat/errors"
)

type IMessageRepository interface {
	Append(msg domain.Message) (domain.Message, error)
	Page(convID string, page, pageSize int) (MessagePage, error)
	MarkRead(messageID, userID string, at time.Time) (domain.Message, bool, error)
	MarkAllRead(convID, userID string, at time.Time) (int, error)
	UnreadCount(userID string) (int, error)
	UnreadCountInConversation(userID, convID string) (int, error)
}

// MessagePage is one slice of a conversation's history. Pages are counted
// from the most recent message; messages inside a page are ascending by
// creation time so the client can render them top to bottom.
type MessagePage struct {
	Messages   []domain.Message
	TotalCount int
	Page       int
	PageSize   int
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// Append persists a message and updates the owning conversation's
// last-message pointer in the same transaction. The transaction is the
// atomicity boundary: either the message, its indexes, and the pointer all
// land, or none do. A stale pointer is never observable after Append returns.
func (r MessageRepository) Append(msg domain.Message) (domain.Message, error) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.ReadAt = nil

	primary := messageKey(msg.ConversationID, msg.CreatedAt, msg.ID)

	err := r.db.Update(func(txn *badger.Txn) error {
		conv, err := getConversation(txn, msg.ConversationID)
		if err != nil {
			return err
		}

		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := txn.Set(primary, data); err != nil {
			return err
		}
		if err := txn.Set(messageIDKey(msg.ID.String()), primary); err != nil {
			return err
		}
		if err := txn.Set(unreadKey(msg.Receiver.ID(), msg.ConversationID, msg.ID), primary); err != nil {
			return err
		}

		conv.LastMessageID = msg.ID.String()
		conv.LastMessageAt = lo.ToPtr(msg.CreatedAt)
		conv.UpdatedAt = msg.CreatedAt
		return putConversation(txn, conv)
	})

	return msg, err
}

// Page reads one page of history. Thanks to the padded timestamp in the key,
// a reverse prefix scan walks messages newest first; the requested page is
// skipped to, collected, then flipped to ascending order. An out-of-range
// page yields an empty slice with the true total, not an error.
func (r MessageRepository) Page(convID string, page, pageSize int) (MessagePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	result := MessagePage{Page: page, PageSize: pageSize}

	err := r.db.View(func(txn *badger.Txn) error {
		if _, err := getConversation(txn, convID); err != nil {
			return err
		}

		prefix := messagePrefix(convID)
		result.TotalCount = countKeys(txn, prefix)

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key for this conversation,
		// then walk backwards.
		seekKey := append(append([]byte{}, prefix...), 0xFF)
		it.Seek(seekKey)

		skip := (page - 1) * pageSize
		var raw [][]byte
		for ; it.ValidForPrefix(prefix); it.Next() {
			if skip > 0 {
				skip--
				continue
			}
			if len(raw) == pageSize {
				break
			}
			var buf []byte
			if err := it.Item().Value(func(val []byte) error {
				buf = append(buf, val...)
				return nil
			}); err != nil {
				return err
			}
			raw = append(raw, buf)
		}

		// Collected newest first; flip to ascending.
		for i := len(raw) - 1; i >= 0; i-- {
			var msg domain.Message
			if err := json.Unmarshal(raw[i], &msg); err != nil {
				return err
			}
			result.Messages = append(result.Messages, msg)
		}
		return nil
	})

	return result, err
}

// MarkRead performs the single monotonic read transition on behalf of the
// receiver. Repeat calls are idempotent: an already-read message is returned
// unchanged with updated=false so the caller knows not to re-emit the read
// event.
func (r MessageRepository) MarkRead(messageID, userID string, at time.Time) (domain.Message, bool, error) {
	var msg domain.Message
	updated := false

	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIDKey(messageID))
		if err == badger.ErrKeyNotFound {
			return apperrors.ErrMessageNotFound
		}
		if err != nil {
			return err
		}

		primary, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		msgItem, err := txn.Get(primary)
		if err != nil {
			return err
		}
		if err := msgItem.Value(func(val []byte) error {
			return json.Unmarshal(val, &msg)
		}); err != nil {
			return err
		}

		if !msg.Receiver.Is(userID) {
			return apperrors.ErrNotMessageReceiver
		}
		if msg.IsRead() {
			return nil
		}

		msg.ReadAt = lo.ToPtr(at)
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := txn.Set(primary, data); err != nil {
			return err
		}
		if err := txn.Delete(unreadKey(userID, msg.ConversationID, msg.ID)); err != nil {
			return err
		}
		updated = true
		return nil
	})

	return msg, updated, err
}

// MarkAllRead clears every unread message addressed to the user in one
// conversation as a single logical operation, returning how many messages
// transitioned.
func (r MessageRepository) MarkAllRead(convID, userID string, at time.Time) (int, error) {
	count := 0

	err := r.db.Update(func(txn *badger.Txn) error {
		prefix := unreadConversationPrefix(userID, convID)
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)

		type entry struct {
			unread  []byte
			primary []byte
		}
		var entries []entry
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			primary, err := it.Item().ValueCopy(nil)
			if err != nil {
				it.Close()
				return err
			}
			entries = append(entries, entry{
				unread:  it.Item().KeyCopy(nil),
				primary: primary,
			})
		}
		it.Close()

		for _, e := range entries {
			item, err := txn.Get(e.primary)
			if err != nil {
				return err
			}
			var msg domain.Message
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			}); err != nil {
				return err
			}

			msg.ReadAt = lo.ToPtr(at)
			data, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			if err := txn.Set(e.primary, data); err != nil {
				return err
			}
			if err := txn.Delete(e.unread); err != nil {
				return err
			}
			count++
		}
		return nil
	})

	if err != nil {
		return 0, err
	}
	return count, nil
}

// UnreadCount counts messages addressed to the user with no read timestamp,
// across all conversations. The unread index makes this a key-only scan.
func (r MessageRepository) UnreadCount(userID string) (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		count = countKeys(txn, unreadUserPrefix(userID))
		return nil
	})
	return count, err
}

func (r MessageRepository) UnreadCountInConversation(userID, convID string) (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		count = countKeys(txn, unreadConversationPrefix(userID, convID))
		return nil
	})
	return count, err
}
