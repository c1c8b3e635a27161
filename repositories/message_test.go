package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"tutor-chat/domain"
	apperrors "tutor-chat/errors"
)

func seedConversation(t *testing.T, db *badger.DB) domain.Conversation {
	t.Helper()
	conv, _, err := NewConversationRepository(db, slog.Default()).GetOrCreate("student-42", "educator-7")
	require.NoError(t, err)
	return conv
}

// appendMessages stores n student-to-educator messages with strictly
// increasing timestamps so ordering assertions are deterministic.
func appendMessages(t *testing.T, repo MessageRepository, conv domain.Conversation, n int) []domain.Message {
	t.Helper()
	req := require.New(t)
	sender, _ := conv.ByRole(domain.RoleStudent)
	receiver, _ := conv.ByRole(domain.RoleEducator)
	base := time.Now().UTC()

	messages := make([]domain.Message, 0, n)
	for i := 1; i <= n; i++ {
		msg, err := repo.Append(domain.Message{
			ConversationID: conv.ID,
			Sender:         sender,
			Receiver:       receiver,
			Content:        fmt.Sprintf("message %d", i),
			MessageType:    domain.MessageText,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		})
		req.NoError(err)
		messages = append(messages, msg)
	}
	return messages
}

func Test_Append_Updates_Conversation_Pointer(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	conv := seedConversation(t, db)
	repo := NewMessageRepository(db, slog.Default())

	messages := appendMessages(t, repo, conv, 2)

	// The conversation tracks its most recent message atomically with
	// the append.
	reloaded, err := NewConversationRepository(db, slog.Default()).FindByID(conv.ID)
	req.NoError(err)
	req.Equal(messages[1].ID.String(), reloaded.LastMessageID)
	req.NotNil(reloaded.LastMessageAt)
	req.True(reloaded.LastMessageAt.Equal(messages[1].CreatedAt))
}

func Test_Append_Rejects_Unknown_Conversation(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())

	_, err := repo.Append(domain.Message{
		ConversationID: "no-such-conversation",
		Content:        "hello",
		MessageType:    domain.MessageText,
	})
	req.ErrorIs(err, apperrors.ErrConversationNotFound)
}

func Test_Page_Counts_From_Most_Recent(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	conv := seedConversation(t, db)
	repo := NewMessageRepository(db, slog.Default())

	// Given 5 messages and a page size of 2
	appendMessages(t, repo, conv, 5)

	// Page 1 holds the two newest, ascending inside the page
	page1, err := repo.Page(conv.ID, 1, 2)
	req.NoError(err)
	req.Equal(5, page1.TotalCount)
	req.Len(page1.Messages, 2)
	req.Equal("message 4", page1.Messages[0].Content)
	req.Equal("message 5", page1.Messages[1].Content)

	// Page 2 holds the middle pair
	page2, err := repo.Page(conv.ID, 2, 2)
	req.NoError(err)
	req.Len(page2.Messages, 2)
	req.Equal("message 2", page2.Messages[0].Content)
	req.Equal("message 3", page2.Messages[1].Content)

	// Page 3 holds the single oldest message
	page3, err := repo.Page(conv.ID, 3, 2)
	req.NoError(err)
	req.Len(page3.Messages, 1)
	req.Equal("message 1", page3.Messages[0].Content)

	// An out-of-range page is empty, with the true total, not an error
	page4, err := repo.Page(conv.ID, 4, 2)
	req.NoError(err)
	req.Empty(page4.Messages)
	req.Equal(5, page4.TotalCount)
}

func Test_Page_Unknown_Conversation(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())

	_, err := repo.Page("no-such-conversation", 1, 10)
	req.ErrorIs(err, apperrors.ErrConversationNotFound)
}

func Test_MarkRead_Is_A_Single_Monotonic_Transition(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	conv := seedConversation(t, db)
	repo := NewMessageRepository(db, slog.Default())

	messages := appendMessages(t, repo, conv, 1)
	msgID := messages[0].ID.String()

	unread, err := repo.UnreadCount("educator-7")
	req.NoError(err)
	req.Equal(1, unread)

	// When the receiver marks the message read
	readAt := time.Now().UTC()
	marked, updated, err := repo.MarkRead(msgID, "educator-7", readAt)
	req.NoError(err)
	req.True(updated)
	req.NotNil(marked.ReadAt)
	req.True(marked.ReadAt.Equal(readAt))

	unread, err = repo.UnreadCount("educator-7")
	req.NoError(err)
	req.Zero(unread)

	// Then a repeat call is a no-op returning the original timestamp
	again, updated, err := repo.MarkRead(msgID, "educator-7", readAt.Add(time.Hour))
	req.NoError(err)
	req.False(updated)
	req.True(again.ReadAt.Equal(readAt))
}

func Test_MarkRead_Only_The_Receiver_May_Read(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	conv := seedConversation(t, db)
	repo := NewMessageRepository(db, slog.Default())

	messages := appendMessages(t, repo, conv, 1)
	msgID := messages[0].ID.String()

	// The sender cannot acknowledge their own message
	_, _, err := repo.MarkRead(msgID, "student-42", time.Now().UTC())
	req.ErrorIs(err, apperrors.ErrNotMessageReceiver)

	// Neither can a stranger
	_, _, err = repo.MarkRead(msgID, "student-999", time.Now().UTC())
	req.ErrorIs(err, apperrors.ErrNotMessageReceiver)
}

func Test_MarkRead_Unknown_Message(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())

	_, _, err := repo.MarkRead("no-such-message", "educator-7", time.Now().UTC())
	req.ErrorIs(err, apperrors.ErrMessageNotFound)
}

func Test_MarkAllRead_Scopes_To_One_Conversation(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	convRepo := NewConversationRepository(db, slog.Default())
	repo := NewMessageRepository(db, slog.Default())

	// Given unread messages in two of the educator's conversations
	convA := seedConversation(t, db)
	appendMessages(t, repo, convA, 3)

	convB, _, err := convRepo.GetOrCreate("student-43", "educator-7")
	req.NoError(err)
	appendMessages(t, repo, convB, 1)

	total, err := repo.UnreadCount("educator-7")
	req.NoError(err)
	req.Equal(4, total)

	// When bulk-clearing the first conversation
	cleared, err := repo.MarkAllRead(convA.ID, "educator-7", time.Now().UTC())
	req.NoError(err)
	req.Equal(3, cleared)

	// Then only that thread's unread count drops
	inA, err := repo.UnreadCountInConversation("educator-7", convA.ID)
	req.NoError(err)
	req.Zero(inA)

	total, err = repo.UnreadCount("educator-7")
	req.NoError(err)
	req.Equal(1, total)

	// And a repeat bulk-clear finds nothing left to do
	cleared, err = repo.MarkAllRead(convA.ID, "educator-7", time.Now().UTC())
	req.NoError(err)
	req.Zero(cleared)
}
