package repositories

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"tutor-chat/domain"
)

// SearchHit is one full-text match inside a conversation.
type SearchHit struct {
	MessageID      string
	ConversationID string
	Content        string
	Score          float64
}

// MessageIndex maintains a full-text index over message content.
// Indexing happens after the Badger commit, so search results are
// eventually consistent with stored state; a message that fails to index
// is logged and stays findable through pagination.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index upserts one message document, keyed by message ID.
func (i *MessageIndex) Index(msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewKeywordField("conversation_id", msg.ConversationID).StoreValue()).
		AddField(bluge.NewKeywordField("sender_id", msg.Sender.ID())).
		AddField(bluge.NewTextField("content", msg.Content).StoreValue()).
		AddField(bluge.NewDateTimeField("created_at", msg.CreatedAt))

	return i.writer.Update(doc.ID(), doc)
}

// Search matches terms against message content within one conversation,
// best score first.
func (i *MessageIndex) Search(ctx context.Context, conversationID, terms string, limit int) ([]SearchHit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(conversationID).SetField("conversation_id"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		hit := SearchHit{Score: match.Score}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "conversation_id":
				hit.ConversationID = string(value)
			case "content":
				hit.Content = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
