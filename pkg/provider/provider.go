// Package provider defines the completer contract the chat service talks to
// and the closed table of models the engine will use.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Role of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn handed to a completer.
type Message struct {
	Role    Role
	Content string
}

// Request is a single completion call. Nil tuning fields mean the backend
// default.
type Request struct {
	System      string
	Messages    []Message
	Temperature *float32
	MaxTokens   *int
}

// Completion is a completer's reply.
type Completion struct {
	Content string
	Reason  string
}

// Completer produces a completion for an ordered conversation. A failed call
// returns an error and produces nothing; callers must not treat a failure as
// a turn.
type Completer interface {
	Complete(ctx context.Context, request Request) (*Completion, error)
}

// Error is a failed model call, carrying the upstream HTTP status when known.
type Error struct {
	Status  int
	Message string
}

// NewError creates an Error. Pass status 0 when no HTTP status applies.
func NewError(status int, message string) *Error {
	return &Error{
		Status:  status,
		Message: message,
	}
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}

	return e.Message
}

// IsRetryable reports whether err looks transient: a rate limit or an
// upstream server error.
func IsRetryable(err error) bool {
	var providerError *Error

	if !errors.As(err, &providerError) {
		return false
	}

	return providerError.Status == http.StatusTooManyRequests || providerError.Status >= http.StatusInternalServerError
}
