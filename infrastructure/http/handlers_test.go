package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tutor-chat/auth"
	"tutor-chat/domain"
	"tutor-chat/domain/chat"
	apperrors "tutor-chat/errors"
	"tutor-chat/mocks"
	"tutor-chat/repositories"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerFixture struct {
	service *mocks.MockIChatService
	tokens  auth.Tokens
	router  *gin.Engine
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	service := mocks.NewMockIChatService(ctrl)
	tokens := auth.NewTokens("test-secret", time.Hour)
	handler := NewHandler(slog.Default(), service, nil, 50)
	return routerFixture{
		service: service,
		tokens:  tokens,
		router:  NewRouter(handler, tokens, 16),
	}
}

func (f routerFixture) request(t *testing.T, method, target, body, userID, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		signed, err := f.tokens.Generate(userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+signed)
	}
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func Test_Api_Rejects_Missing_And_Invalid_Tokens(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	// No token at all
	recorder := f.request(t, http.MethodGet, "/api/unread-count", "", "", "")
	req.Equal(http.StatusUnauthorized, recorder.Code)

	// A token signed with the wrong secret
	signed, err := auth.NewTokens("wrong-secret", time.Hour).Generate("student-42", "student")
	req.NoError(err)
	request := httptest.NewRequest(http.MethodGet, "/api/unread-count", nil)
	request.Header.Set("Authorization", "Bearer "+signed)
	recorder = httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)
	req.Equal(http.StatusUnauthorized, recorder.Code)

	// A valid signature carrying an unknown role
	recorder = f.request(t, http.MethodGet, "/api/unread-count", "", "student-42", "wizard")
	req.Equal(http.StatusForbidden, recorder.Code)
}

func Test_CreateConversation_Status_Reflects_Creation(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	conv := domain.Conversation{ID: "conv-1", Type: domain.ConversationStudentEducator}
	f.service.EXPECT().
		CreateOrGetConversation(gomock.Any(), "student-42", domain.RoleStudent, "educator-7").
		Return(conv, true, nil)

	recorder := f.request(t, http.MethodPost, "/api/conversations",
		`{"educator_id":"educator-7"}`, "student-42", "student")
	req.Equal(http.StatusCreated, recorder.Code)

	// The same request against an existing thread answers 200.
	f.service.EXPECT().
		CreateOrGetConversation(gomock.Any(), "student-42", domain.RoleStudent, "educator-7").
		Return(conv, false, nil)

	recorder = f.request(t, http.MethodPost, "/api/conversations",
		`{"educator_id":"educator-7"}`, "student-42", "student")
	req.Equal(http.StatusOK, recorder.Code)
}

func Test_CreateConversation_Validates_Body(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/conversations",
		`{}`, "student-42", "student")
	req.Equal(http.StatusBadRequest, recorder.Code)
}

func Test_SendMessage_Maps_Request_To_Command(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	var captured chat.SendMessageCommand
	f.service.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, cmd chat.SendMessageCommand) (domain.Message, error) {
			captured = cmd
			return domain.Message{Content: cmd.Content}, nil
		})

	recorder := f.request(t, http.MethodPost, "/api/conversations/conv-1/messages",
		`{"content":"hello","message_type":"text","receiver_id":"educator-7","receiver_role":"educator"}`,
		"student-42", "student")

	req.Equal(http.StatusCreated, recorder.Code)
	req.Equal("conv-1", captured.ConversationID)
	req.Equal("student-42", captured.SenderID)
	req.Equal(domain.RoleStudent, captured.SenderRole)
	req.Equal("educator-7", captured.ReceiverID)
	req.Equal(domain.RoleEducator, captured.ReceiverRole)
	req.Equal(domain.MessageText, captured.MessageType)
}

func Test_SendMessage_Requires_Content_Or_Attachments(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	recorder := f.request(t, http.MethodPost, "/api/conversations/conv-1/messages",
		`{"message_type":"text"}`, "student-42", "student")
	req.Equal(http.StatusBadRequest, recorder.Code)
}

func Test_GetMessages_Clamps_Page_Size(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	// page_size above the configured ceiling is clamped to 50
	f.service.EXPECT().
		GetMessages(gomock.Any(), "conv-1", "student-42", 3, 50).
		Return(repositories.MessagePage{Page: 3, PageSize: 50}, nil)

	recorder := f.request(t, http.MethodGet,
		"/api/conversations/conv-1/messages?page=3&page_size=500", "", "student-42", "student")
	req.Equal(http.StatusOK, recorder.Code)

	// Messages serialize as an empty array, never null
	var body struct {
		Messages []json.RawMessage `json:"messages"`
	}
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
	req.NotNil(body.Messages)
}

func Test_Error_Classes_Map_To_Status_Codes(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	tests := []struct {
		err  error
		want int
	}{
		{apperrors.ErrConversationNotFound, http.StatusNotFound},
		{apperrors.ErrNotParticipant, http.StatusForbidden},
		{apperrors.ErrRoleNotAllowed, http.StatusForbidden},
	}

	for _, tt := range tests {
		f.service.EXPECT().
			GetMessages(gomock.Any(), "conv-1", "student-42", 1, 20).
			Return(repositories.MessagePage{}, tt.err)

		recorder := f.request(t, http.MethodGet,
			"/api/conversations/conv-1/messages", "", "student-42", "student")
		req.Equal(tt.want, recorder.Code, tt.err.Error())
	}
}

func Test_Search_Requires_Query(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	recorder := f.request(t, http.MethodGet,
		"/api/conversations/conv-1/messages/search", "", "student-42", "student")
	req.Equal(http.StatusBadRequest, recorder.Code)
}

func Test_UnreadCount(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	f.service.EXPECT().
		UnreadCount(gomock.Any(), "educator-7", domain.RoleEducator).
		Return(12, nil)

	recorder := f.request(t, http.MethodGet, "/api/unread-count", "", "educator-7", "educator")
	req.Equal(http.StatusOK, recorder.Code)

	var body struct {
		UnreadCount int `json:"unread_count"`
	}
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
	req.Equal(12, body.UnreadCount)
}

func Test_Health_Needs_No_Token(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)

	recorder := f.request(t, http.MethodGet, "/health", "", "", "")
	req.Equal(http.StatusOK, recorder.Code)
}
