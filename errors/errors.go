// Package errors centralizes the domain failure taxonomy.
// Sentinels are compared with errors.Is; the transport layer maps them
// to status codes at the edge and never leaks internal detail.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRole marks an external role token with no canonical mapping.
	ErrInvalidRole = fmt.Errorf("unknown role")

	// ErrRoleNotAllowed marks an operation attempted with a valid
	// but unauthorized role (e.g. an educator initiating a conversation).
	ErrRoleNotAllowed = fmt.Errorf("role not allowed for this operation")

	ErrConversationNotFound = fmt.Errorf("conversation not found")
	ErrMessageNotFound      = fmt.Errorf("message not found")

	// ErrNotParticipant marks a caller acting on a conversation
	// they do not belong to.
	ErrNotParticipant = fmt.Errorf("caller is not a participant of this conversation")

	// ErrNotMessageReceiver marks a read attempt by anyone
	// other than the message's designated receiver.
	ErrNotMessageReceiver = fmt.Errorf("caller is not the receiver of this message")

	ErrValidation = fmt.Errorf("invalid input")
)

// MapToHTTPStatus translates a domain failure into the HTTP status the API
// responds with. Anything outside the taxonomy is an internal error.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrConversationNotFound), errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrRoleNotAllowed),
		errors.Is(err, ErrNotParticipant), errors.Is(err, ErrNotMessageReceiver):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
