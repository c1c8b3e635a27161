//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tutor-chat/contract"
	"tutor-chat/domain"
	"tutor-chat/domain/chat"
	"tutor-chat/domain/event"
	apperrors "tutor-chat/errors"
	"tutor-chat/moderation"
	"tutor-chat/observability"
	"tutor-chat/repositories"
)

// ConversationSummary is one row of a user's inbox: the conversation, the
// other party with display fields expanded, and how many messages are
// still addressed to the user unread.
type ConversationSummary struct {
	Conversation domain.Conversation
	Counterpart  domain.Participant
	UnreadCount  int
}

type IChatService interface {
	CreateOrGetConversation(ctx context.Context, callerID string, callerRole domain.Role, educatorID string) (domain.Conversation, bool, error)
	ListConversations(ctx context.Context, userID string, role domain.Role) ([]ConversationSummary, error)
	GetMessages(ctx context.Context, convID, userID string, page, pageSize int) (repositories.MessagePage, error)
	SendMessage(ctx context.Context, cmd chat.SendMessageCommand) (domain.Message, error)
	MarkMessageRead(ctx context.Context, messageID, userID string) (domain.Message, error)
	MarkConversationRead(ctx context.Context, convID, userID string) (int, int, error)
	UnreadCount(ctx context.Context, userID string, role domain.Role) (int, error)
	SearchMessages(ctx context.Context, convID, userID, terms string, limit int) ([]repositories.SearchHit, error)
	Connect(userID string, sink contract.EventSink)
	Disconnect(userID string, sink contract.EventSink)
}

// ChatService composes the stores, the registry, and the dispatcher into
// the use cases exposed to request handlers. It is the only entry point
// handlers talk to.
type ChatService struct {
	log           *slog.Logger
	conversations repositories.IConversationRepository
	messages      repositories.IMessageRepository
	index         *repositories.MessageIndex
	filter        *moderation.Filter
	dispatcher    contract.IDispatcher
	registry      contract.IRegistry
	profiles      contract.ProfileResolver
	monitor       *observability.Monitor
}

// NewChatService wires the orchestrator. index, filter, and profiles may
// be nil: search degrades to empty results, moderation passes content
// through, and participants keep bare identifiers.
func NewChatService(
	log *slog.Logger,
	conversations repositories.IConversationRepository,
	messages repositories.IMessageRepository,
	index *repositories.MessageIndex,
	filter *moderation.Filter,
	dispatcher contract.IDispatcher,
	registry contract.IRegistry,
	profiles contract.ProfileResolver,
	monitor *observability.Monitor,
) *ChatService {
	return &ChatService{
		log:           log,
		conversations: conversations,
		messages:      messages,
		index:         index,
		filter:        filter,
		dispatcher:    dispatcher,
		registry:      registry,
		profiles:      profiles,
		monitor:       monitor,
	}
}

// CreateOrGetConversation resolves (or lazily creates) the thread between
// the calling student and an educator. Only students initiate contact.
func (s *ChatService) CreateOrGetConversation(ctx context.Context, callerID string, callerRole domain.Role, educatorID string) (domain.Conversation, bool, error) {
	if callerRole != domain.RoleStudent {
		return domain.Conversation{}, false, fmt.Errorf("%w: only students start conversations", apperrors.ErrRoleNotAllowed)
	}

	conv, created, err := s.conversations.GetOrCreate(callerID, educatorID)
	if err != nil {
		return domain.Conversation{}, false, err
	}
	if created {
		s.monitor.IncrConversationsCreated()
		s.log.Info("conversation created",
			"conversation_id", conv.ID,
			"student_id", callerID,
			"educator_id", educatorID)
	}
	return s.expandConversation(conv), created, nil
}

// ListConversations returns the user's active threads, most recent
// activity first, each with the unread count for that user. Ties on
// LastMessageAt fall back to UpdatedAt, then to ID so the order is stable.
func (s *ChatService) ListConversations(ctx context.Context, userID string, role domain.Role) ([]ConversationSummary, error) {
	conversations, err := s.conversations.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		unread, err := s.messages.UnreadCountInConversation(userID, conv.ID)
		if err != nil {
			return nil, err
		}
		counterpart, _ := conv.Counterpart(userID)
		summaries = append(summaries, ConversationSummary{
			Conversation: conv,
			Counterpart:  s.expand(counterpart),
			UnreadCount:  unread,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].Conversation, summaries[j].Conversation
		switch {
		case a.LastMessageAt != nil && b.LastMessageAt != nil && !a.LastMessageAt.Equal(*b.LastMessageAt):
			return a.LastMessageAt.After(*b.LastMessageAt)
		case (a.LastMessageAt != nil) != (b.LastMessageAt != nil):
			return a.LastMessageAt != nil
		case !a.UpdatedAt.Equal(b.UpdatedAt):
			return a.UpdatedAt.After(b.UpdatedAt)
		default:
			return a.ID < b.ID
		}
	})
	return summaries, nil
}

// GetMessages pages through a conversation's history, participants only.
func (s *ChatService) GetMessages(ctx context.Context, convID, userID string, page, pageSize int) (repositories.MessagePage, error) {
	if err := s.requireParticipant(convID, userID); err != nil {
		return repositories.MessagePage{}, err
	}
	return s.messages.Page(convID, page, pageSize)
}

// SendMessage validates membership, persists the message, and notifies the
// receiver if they are connected. The returned message reflects stored
// state regardless of delivery outcome: an offline receiver is normal.
func (s *ChatService) SendMessage(ctx context.Context, cmd chat.SendMessageCommand) (domain.Message, error) {
	if !domain.KnownMessageType(cmd.MessageType) {
		return domain.Message{}, fmt.Errorf("%w: message_type %q", apperrors.ErrValidation, cmd.MessageType)
	}

	conv, err := s.conversations.FindByID(cmd.ConversationID)
	if err != nil {
		return domain.Message{}, err
	}
	if !conv.IsParticipant(cmd.SenderID) {
		return domain.Message{}, apperrors.ErrNotParticipant
	}

	// The conversation is authoritative for who receives the message;
	// a declared receiver outside the pair is rejected.
	receiver, ok := conv.Counterpart(cmd.SenderID)
	if !ok {
		return domain.Message{}, apperrors.ErrNotParticipant
	}
	if cmd.ReceiverID != "" && cmd.ReceiverID != receiver.ID() {
		return domain.Message{}, fmt.Errorf("%w: receiver is not part of this conversation", apperrors.ErrValidation)
	}

	content := cmd.Content
	if s.filter != nil {
		content = s.filter.Mask(content)
	}

	sender, _ := conv.Counterpart(receiver.ID())
	msg := domain.Message{
		ConversationID: conv.ID,
		Sender:         sender,
		Receiver:       receiver,
		Content:        content,
		MessageType:    cmd.MessageType,
		Attachments:    cmd.Attachments,
		CreatedAt:      time.Now().UTC(),
	}

	persisted, err := s.messages.Append(msg)
	if err != nil {
		return domain.Message{}, err
	}
	s.monitor.IncrMessagesStored()

	if s.index != nil {
		if err := s.index.Index(persisted); err != nil {
			s.log.Error("failed to index message",
				"message_id", persisted.ID, "error", err)
		}
	}

	s.dispatcher.Push(ctx, event.NewMessage{Message: persisted})

	persisted.Sender = s.expand(persisted.Sender)
	persisted.Receiver = s.expand(persisted.Receiver)
	return persisted, nil
}

// MarkMessageRead performs the read transition and notifies the original
// sender. A repeat call on an already-read message is a no-op that returns
// current state without re-emitting the event.
func (s *ChatService) MarkMessageRead(ctx context.Context, messageID, userID string) (domain.Message, error) {
	msg, updated, err := s.messages.MarkRead(messageID, userID, time.Now().UTC())
	if err != nil {
		return domain.Message{}, err
	}

	if updated {
		s.monitor.IncrReadReceipts()
		s.dispatcher.Push(ctx, event.MessageRead{
			MessageID:      msg.ID.String(),
			ConversationID: msg.ConversationID,
			ReaderID:       userID,
			SenderID:       msg.Sender.ID(),
			ReadAt:         *msg.ReadAt,
		})
	}
	return msg, nil
}

// MarkConversationRead bulk-clears the caller's unread messages in one
// conversation and returns (messages updated, unread remaining overall).
func (s *ChatService) MarkConversationRead(ctx context.Context, convID, userID string) (int, int, error) {
	if err := s.requireParticipant(convID, userID); err != nil {
		return 0, 0, err
	}

	updated, err := s.messages.MarkAllRead(convID, userID, time.Now().UTC())
	if err != nil {
		return 0, 0, err
	}
	remaining, err := s.messages.UnreadCount(userID)
	if err != nil {
		return 0, 0, err
	}
	return updated, remaining, nil
}

// UnreadCount counts unread messages addressed to the user across all
// conversations.
func (s *ChatService) UnreadCount(ctx context.Context, userID string, role domain.Role) (int, error) {
	return s.messages.UnreadCount(userID)
}

// SearchMessages runs a full-text query inside one conversation,
// participants only. With no index configured it returns no hits.
func (s *ChatService) SearchMessages(ctx context.Context, convID, userID, terms string, limit int) ([]repositories.SearchHit, error) {
	if err := s.requireParticipant(convID, userID); err != nil {
		return nil, err
	}
	if s.index == nil {
		return nil, nil
	}
	return s.index.Search(ctx, convID, terms, limit)
}

// Connect registers the user's live connection, replacing any stale one.
func (s *ChatService) Connect(userID string, sink contract.EventSink) {
	s.registry.Register(userID, sink)
}

// Disconnect drops the user's live connection, but only if the given
// handle is still the registered one. After a reconnect the stale
// connection's teardown must not wipe the fresh registration.
func (s *ChatService) Disconnect(userID string, sink contract.EventSink) {
	s.registry.UnregisterSink(userID, sink)
}

func (s *ChatService) requireParticipant(convID, userID string) error {
	conv, err := s.conversations.FindByID(convID)
	if err != nil {
		return err
	}
	if !conv.IsParticipant(userID) {
		return apperrors.ErrNotParticipant
	}
	return nil
}

func (s *ChatService) expand(p domain.Participant) domain.Participant {
	if s.profiles == nil {
		return p
	}
	if profile, ok := s.profiles.Resolve(p.UserID); ok {
		p.Profile = &profile
	}
	return p
}

func (s *ChatService) expandConversation(conv domain.Conversation) domain.Conversation {
	for i, p := range conv.Participants {
		conv.Participants[i] = s.expand(p)
	}
	return conv
}
