package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tutor-chat/domain"
)

func newTestIndex(t *testing.T) *MessageIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewMessageIndex(writer, slog.Default())
}

func indexedMessage(convID, content string) domain.Message {
	return domain.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		Sender:         domain.Participant{UserID: "student-42", Role: domain.RoleStudent},
		Receiver:       domain.Participant{UserID: "educator-7", Role: domain.RoleEducator},
		Content:        content,
		MessageType:    domain.MessageText,
		CreatedAt:      time.Now().UTC(),
	}
}

func Test_Search_Is_Scoped_To_One_Conversation(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	// Given the same word indexed in two different conversations
	inScope := indexedMessage("conv-a", "the homework deadline moved")
	req.NoError(index.Index(inScope))
	req.NoError(index.Index(indexedMessage("conv-b", "homework is graded")))

	// When searching inside the first conversation
	hits, err := index.Search(context.Background(), "conv-a", "homework", 10)

	// Then only that conversation's message matches
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(inScope.ID.String(), hits[0].MessageID)
	req.Equal("conv-a", hits[0].ConversationID)
	req.Equal("the homework deadline moved", hits[0].Content)
	req.Positive(hits[0].Score)
}

func Test_Search_No_Match(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.Index(indexedMessage("conv-a", "see you tomorrow")))

	hits, err := index.Search(context.Background(), "conv-a", "homework", 10)
	req.NoError(err)
	req.Empty(hits)
}

func Test_Index_Upserts_By_Message_ID(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	// Indexing the same message twice must not duplicate it.
	msg := indexedMessage("conv-a", "first draft")
	req.NoError(index.Index(msg))
	msg.Content = "second draft"
	req.NoError(index.Index(msg))

	hits, err := index.Search(context.Background(), "conv-a", "draft", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("second draft", hits[0].Content)
}
