// Package errors holds the error taxonomy shared by every layer.
// Each error carries a Kind that the request boundary maps to a status code.
package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindBadRequest
	KindUnauthenticated
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified error. Sentinels below are *Error values so
// errors.Is matches them by identity even after wrapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: KindForbidden, Message: msg} }
func BadRequest(msg string) *Error      { return &Error{Kind: KindBadRequest, Message: msg} }
func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func Conflict(msg string) *Error        { return &Error{Kind: KindConflict, Message: msg} }

// Wrap classifies err under kind while keeping it in the chain.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrHubStopped  = fmt.Errorf("delivery hub stopped")
	ErrSinkFull    = fmt.Errorf("session buffer full")

	ErrConversationNotFound = NotFound("conversation not found")
	ErrMessageNotFound      = NotFound("message not found")
	ErrUserNotFound         = NotFound("user not found")
	ErrOtherUserNotFound    = NotFound("other user not found")

	ErrNotParticipant      = Forbidden("not a participant")
	ErrSelfConversation    = Forbidden("cannot create a direct conversation with yourself")
	ErrNotGroup            = Forbidden("operation only allowed on group conversations")
	ErrNotSender           = Forbidden("you can only modify your own messages")
	ErrEmptyContent        = BadRequest("content cannot be empty")
	ErrEmptyName           = BadRequest("name cannot be empty")
	ErrInvalidCredentials  = Unauthenticated("invalid username or password")
	ErrInvalidToken        = Unauthenticated("invalid or expired token")
	ErrMissingToken        = Unauthenticated("authorization token is missing")
	ErrInvalidPassword     = BadRequest("password does not meet complexity requirements")
	ErrUserAlreadyExists   = Conflict("username or email already taken")
	ErrTokenGeneration     = fmt.Errorf("token generation failed")
	ErrUnsupportedDatabase = fmt.Errorf("unsupported store driver")
)

// KindOf returns the kind of the first *Error found in the chain,
// KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code of the request surface.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides internal failures behind a generic message.
func PublicMessage(err error) string {
	var e *Error
	if goerrors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal error"
}
