//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"tutor-chat/domain"
)

type IConversationRepository interface {
	GetOrCreate(studentID, educatorID string) (domain.Conversation, bool, error)
	FindByID(id string) (domain.Conversation, error)
	ListForUser(userID string) ([]domain.Conversation, error)
}

type ConversationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewConversationRepository(db *badger.DB, log *slog.Logger) ConversationRepository {
	return ConversationRepository{db: db, log: log}
}

// getOrCreateAttempts bounds the retry loop on transaction conflicts.
const getOrCreateAttempts = 3

// GetOrCreate resolves the active conversation for an unordered
// (student, educator) pair, creating it lazily on first contact.
// Arguments are positional by contract: studentID first, educatorID
// second. The pair index canonicalizes order, so a swapped call still
// resolves to the existing thread, but roles are assigned from argument
// positions when the thread is first created.
//
// The lookup and the create happen inside a single Badger transaction keyed
// on the pair index, so two concurrent first contacts cannot both create:
// the loser's transaction aborts with ErrConflict and is retried, at which
// point it finds the winner's conversation. Creation is therefore idempotent
// on the pair regardless of argument order or interleaving.
func (r ConversationRepository) GetOrCreate(studentID, educatorID string) (domain.Conversation, bool, error) {
	for attempt := 0; attempt < getOrCreateAttempts; attempt++ {
		conv, created, err := r.getOrCreateOnce(studentID, educatorID)
		if err == badger.ErrConflict {
			r.log.Debug("conversation pair conflict, retrying as lookup",
				"student_id", studentID, "educator_id", educatorID)
			continue
		}
		return conv, created, err
	}
	return domain.Conversation{}, false, fmt.Errorf("conversation creation kept conflicting for pair %s", domain.PairKey(studentID, educatorID))
}

func (r ConversationRepository) getOrCreateOnce(studentID, educatorID string) (domain.Conversation, bool, error) {
	var conv domain.Conversation
	created := false

	err := r.db.Update(func(txn *badger.Txn) error {
		idxKey := pairKey(domain.ConversationStudentEducator, studentID, educatorID)

		item, err := txn.Get(idxKey)
		if err == nil {
			var convID string
			if err := item.Value(func(val []byte) error {
				convID = string(val)
				return nil
			}); err != nil {
				return err
			}
			conv, err = getConversation(txn, convID)
			return err
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		now := time.Now().UTC()
		conv = domain.Conversation{
			ID:   uuid.NewString(),
			Type: domain.ConversationStudentEducator,
			Participants: []domain.Participant{
				{UserID: studentID, Role: domain.RoleStudent},
				{UserID: educatorID, Role: domain.RoleEducator},
			},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		created = true

		if err := putConversation(txn, conv); err != nil {
			return err
		}
		if err := txn.Set(idxKey, []byte(conv.ID)); err != nil {
			return err
		}
		if err := txn.Set(userConversationKey(studentID, conv.ID), nil); err != nil {
			return err
		}
		return txn.Set(userConversationKey(educatorID, conv.ID), nil)
	})

	return conv, created, err
}

func (r ConversationRepository) FindByID(id string) (domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		conv, err = getConversation(txn, id)
		return err
	})
	return conv, err
}

// ListForUser returns the active conversations the user belongs to,
// resolved through the per-user index. Ordering is left to the caller.
func (r ConversationRepository) ListForUser(userID string) ([]domain.Conversation, error) {
	var conversations []domain.Conversation

	err := r.db.View(func(txn *badger.Txn) error {
		prefix := userConversationPrefix(userID)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)

		var ids []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		it.Close()

		for _, id := range ids {
			conv, err := getConversation(txn, id)
			if err != nil {
				return err
			}
			if conv.IsActive {
				conversations = append(conversations, conv)
			}
		}
		return nil
	})

	return conversations, err
}
