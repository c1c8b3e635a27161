package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"tutor-chat/domain"
	apperrors "tutor-chat/errors"
)

// Key layout. Message keys embed a zero-padded nanosecond timestamp so a
// prefix scan yields chronological order, with the message UUID as a
// collision disconnector for same-nanosecond writes.
//
//	conv:{convID}                          -> Conversation JSON
//	convpair:{type}:{pairKey}              -> convID (unordered-pair uniqueness)
//	convuser:{userID}:{convID}             -> (empty) per-user listing index
//	msg:{convID}:{ts %019d}:{msgID}        -> Message JSON
//	msgid:{msgID}                          -> primary message key
//	unread:{userID}:{convID}:{msgID}       -> primary message key

func conversationKey(id string) []byte {
	return []byte("conv:" + id)
}

func pairKey(t domain.ConversationType, studentID, educatorID string) []byte {
	return []byte(fmt.Sprintf("convpair:%s:%s", t, domain.PairKey(studentID, educatorID)))
}

func userConversationKey(userID, convID string) []byte {
	return []byte(fmt.Sprintf("convuser:%s:%s", userID, convID))
}

func userConversationPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("convuser:%s:", userID))
}

func messageKey(convID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", convID, at.UnixNano(), id))
}

func messagePrefix(convID string) []byte {
	return []byte(fmt.Sprintf("msg:%s:", convID))
}

func messageIDKey(id string) []byte {
	return []byte("msgid:" + id)
}

func unreadKey(userID, convID string, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("unread:%s:%s:%s", userID, convID, id))
}

func unreadUserPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("unread:%s:", userID))
}

func unreadConversationPrefix(userID, convID string) []byte {
	return []byte(fmt.Sprintf("unread:%s:%s:", userID, convID))
}

// getConversation loads and decodes a conversation inside an open
// transaction, translating a missing key into the domain failure.
func getConversation(txn *badger.Txn, id string) (domain.Conversation, error) {
	var conv domain.Conversation
	item, err := txn.Get(conversationKey(id))
	if err == badger.ErrKeyNotFound {
		return conv, apperrors.ErrConversationNotFound
	}
	if err != nil {
		return conv, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &conv)
	})
	return conv, err
}

func putConversation(txn *badger.Txn, conv domain.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return txn.Set(conversationKey(conv.ID), data)
}

// countKeys counts the keys under a prefix without prefetching values.
func countKeys(txn *badger.Txn, prefix []byte) int {
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	count := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		count++
	}
	return count
}
