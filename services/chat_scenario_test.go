package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tutor-chat/domain"
	"tutor-chat/domain/chat"
	"tutor-chat/domain/event"
	"tutor-chat/mocks"
	"tutor-chat/observability"
	"tutor-chat/repositories"
	"tutor-chat/runtime"
	"tutor-chat/services"
)

// Full round-trip over real storage and delivery: a student opens a
// conversation, sends a message while the educator is connected, the
// educator reads it, and the unread ledger settles back to zero.
func Test_Student_Sends_Hello_Scenario(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	registry := runtime.NewRegistry()
	monitor := observability.NewMonitor(registry)
	dispatcher := runtime.NewDispatcher(log, registry, monitor, time.Second)
	service := services.NewChatService(
		log,
		repositories.NewConversationRepository(db, log),
		repositories.NewMessageRepository(db, log),
		nil, nil,
		dispatcher,
		registry,
		nil,
		monitor,
	)

	// Given the educator holds a live connection
	var delivered []event.DomainEvent
	educatorSink := mocks.NewMockEventSink(ctrl)
	educatorSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e event.DomainEvent) error {
			delivered = append(delivered, e)
			return nil
		})
	service.Connect("educator-7", educatorSink)

	// When the student opens the conversation and says hello
	conv, created, err := service.CreateOrGetConversation(ctx, "student-42", domain.RoleStudent, "educator-7")
	req.NoError(err)
	req.True(created)

	sent, err := service.SendMessage(ctx, chat.SendMessageCommand{
		ConversationID: conv.ID,
		SenderID:       "student-42",
		Content:        "hello, quick question about the homework",
		MessageType:    domain.MessageText,
	})
	req.NoError(err)

	// Then the educator was notified live
	req.Len(delivered, 1)
	req.Equal("new_message", delivered[0].Name())
	req.Equal("educator-7", delivered[0].Receiver())

	// And their inbox shows one unread message from the student
	inbox, err := service.ListConversations(ctx, "educator-7", domain.RoleEducator)
	req.NoError(err)
	req.Len(inbox, 1)
	req.Equal(1, inbox[0].UnreadCount)
	req.Equal("student-42", inbox[0].Counterpart.ID())

	// When the educator reads the message while the student is offline,
	// the read receipt push is silently skipped
	read, err := service.MarkMessageRead(ctx, sent.ID.String(), "educator-7")
	req.NoError(err)
	req.True(read.IsRead())

	unread, err := service.UnreadCount(ctx, "educator-7", domain.RoleEducator)
	req.NoError(err)
	req.Zero(unread)

	// And repeating the same conversation request reuses the thread
	again, created, err := service.CreateOrGetConversation(ctx, "student-42", domain.RoleStudent, "educator-7")
	req.NoError(err)
	req.False(created)
	req.Equal(conv.ID, again.ID)

	stats := monitor.Snapshot()
	req.Equal(uint64(1), stats.MessagesStored)
	req.Equal(uint64(1), stats.Delivered)
	req.Equal(uint64(1), stats.ReadReceipts)
	req.Equal(uint64(1), stats.ConversationsNew)

	service.Disconnect("educator-7", educatorSink)
	req.Zero(registry.Connected())
}
