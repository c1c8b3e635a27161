// Package http exposes the chat use cases over gin and a websocket
// endpoint for live delivery. Handlers translate between the wire and the
// chat service; they hold no domain logic.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"tutor-chat/domain"
	"tutor-chat/domain/chat"
	apperrors "tutor-chat/errors"
	"tutor-chat/services"
	"tutor-chat/storage"
)

const defaultPageSize = 20

type Handler struct {
	log         *slog.Logger
	service     services.IChatService
	validate    *validator.Validate
	uploads     *storage.Disk
	maxPageSize int
}

func NewHandler(log *slog.Logger, service services.IChatService,
	uploads *storage.Disk, maxPageSize int) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		validate:    validator.New(),
		uploads:     uploads,
		maxPageSize: maxPageSize,
	}
}

type createConversationRequest struct {
	EducatorID string `json:"educator_id" validate:"required"`
}

type attachmentPayload struct {
	URL      string `json:"url" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Filename string `json:"filename" validate:"required"`
	Size     int64  `json:"size" validate:"gte=0"`
}

type sendMessageRequest struct {
	ReceiverID   string              `json:"receiver_id"`
	ReceiverRole string              `json:"receiver_role"`
	Content      string              `json:"content" validate:"required_without=Attachments,max=4000"`
	MessageType  string              `json:"message_type" validate:"required"`
	Attachments  []attachmentPayload `json:"attachments" validate:"dive"`
}

type conversationSummaryResponse struct {
	Conversation domain.Conversation `json:"conversation"`
	Counterpart  domain.Participant  `json:"counterpart"`
	UnreadCount  int                 `json:"unread_count"`
}

// CreateConversation resolves or lazily creates the caller's thread with
// an educator. Students only; repeat calls return the same conversation.
func (h *Handler) CreateConversation(c *gin.Context) {
	identity, ok := CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	var req createConversationRequest
	if err := h.bind(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	conv, created, err := h.service.CreateOrGetConversation(c.Request.Context(), identity.UserID, identity.Role, req.EducatorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"conversation": conv, "created": created})
}

func (h *Handler) ListConversations(c *gin.Context) {
	identity, ok := CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	summaries, err := h.service.ListConversations(c.Request.Context(), identity.UserID, identity.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": lo.Map(summaries, func(s services.ConversationSummary, _ int) conversationSummaryResponse {
			return conversationSummaryResponse{
				Conversation: s.Conversation,
				Counterpart:  s.Counterpart,
				UnreadCount:  s.UnreadCount,
			}
		}),
	})
}

// GetMessages pages through history. Pages count from the most recent;
// messages inside a page arrive oldest first.
func (h *Handler) GetMessages(c *gin.Context) {
	identity, ok := CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", defaultPageSize)
	if pageSize > h.maxPageSize {
		pageSize = h.maxPageSize
	}

	result, err := h.service.GetMessages(c.Request.Context(), c.Param("id"), identity.UserID, page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":    orEmpty(result.Messages),
		"total_count": result.TotalCount,
		"page":        result.Page,
		"page_size":   result.PageSize,
	})
}

func (h *Handler) SendMessage(c *gin.Context) {
	identity, ok := CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	var req sendMessageRequest
	if err := h.bind(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	receiverRole, _ := domain.ParseRole(req.ReceiverRole)
	msg, err := h.service.SendMessage(c.Request.Context(), chat.SendMessageCommand{
		ConversationID: c.Param("id"),
		SenderID:       identity.UserID,
		SenderRole:     identity.Role,
		ReceiverID:     req.ReceiverID,
		ReceiverRole:   receiverRole,
		Content:        req.Content,
		MessageType:    domain.MessageType(req.MessageType),
		Attachments: lo.Map(req.Attachments, func(a attachmentPayload, _ int) domain.Attachment {
			return domain.Attachment{URL: a.URL, Type: a.Type, Filename: a.Filename, Size: a.Size}
		}),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) SearchMessages(c *gin.Context) {
	identity, ok := CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	terms := c.Query("q")
	if terms == "" {
		h.respondError(c, fmt.Errorf("%w: missing q", apperrors.ErrValidation))
		return
	}
	limit := intQuery(c, "limit", defaultPageSize)
	if limit > h.maxPageSize {
		limit = h.maxPageSize
	}

	hits, err := h.service.SearchMessages(c.Request.Context(), c.Param("id"), identity.UserID, terms, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hits": orEmpty(hits)})
}

func (h *Handler) MarkMessageRead(c *gin.Context) {
	identity, ok := CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	msg, err := h.service.MarkMessageRead(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *Handler) MarkConversationRead(c *gin.Context) {
	identity, ok := CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	updated, remaining, err := h.service.MarkConversationRead(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated, "unread_count": remaining})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	identity, ok := CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), identity.UserID, identity.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// UploadAttachment stores a multipart file and returns the descriptor to
// embed in a subsequent send.
func (h *Handler) UploadAttachment(c *gin.Context) {
	if _, ok := CallerIdentity(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.respondError(c, fmt.Errorf("%w: missing file", apperrors.ErrValidation))
		return
	}
	defer file.Close()

	attachment, err := h.uploads.Save(file, header.Filename)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attachment": attachment})
}

// bind decodes the JSON body and runs struct validation, folding both
// failure modes into the validation error class.
func (h *Handler) bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperrors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			"path", c.FullPath(),
			"error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// orEmpty keeps JSON arrays as [] instead of null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
