package server

import (
	"daybook/pkg/chat"
	"daybook/pkg/conversation"
	"daybook/pkg/provider"
	"daybook/pkg/vault"
)

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`

	IncludeCurrent bool   `json:"include_current,omitempty"`
	Current        string `json:"current,omitempty"`
}

// ChatResponse is a completed exchange.
type ChatResponse struct {
	ConversationID string        `json:"conversation_id"`
	Reply          string        `json:"reply"`
	Reason         string        `json:"reason,omitempty"`
	DisplayText    string        `json:"display_text"`
	Referenced     []string      `json:"referenced,omitempty"`
	Notices        []chat.Notice `json:"notices,omitempty"`
}

// SocketFrame is one client frame on the chat websocket. Responses reuse
// ChatResponse.
type SocketFrame struct {
	Message        string `json:"message,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`

	IncludeCurrent bool   `json:"include_current,omitempty"`
	Current        string `json:"current,omitempty"`

	Reset bool `json:"reset,omitempty"`
}

// ResetResponse reports the fresh identity after a reset.
type ResetResponse struct {
	ConversationID string `json:"conversation_id"`
}

// ConversationResponse is the persisted transcript of one conversation.
type ConversationResponse struct {
	ConversationID       string              `json:"conversation_id"`
	Turns                []conversation.Turn `json:"turns"`
	AwaitingUserResponse bool                `json:"awaiting_user_response"`
}

// ConversationsResponse lists the stored conversation identities.
type ConversationsResponse struct {
	Conversations []string `json:"conversations"`
}

// DocumentsResponse lists the indexed vault documents.
type DocumentsResponse struct {
	Documents []vault.Document `json:"documents"`
}

// SuggestResponse lists document names matching a partial query.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// RefreshResponse reports the rebuilt index size.
type RefreshResponse struct {
	Documents int `json:"documents"`
}

// ModelsResponse lists the models the engine accepts.
type ModelsResponse struct {
	Models []provider.Model `json:"models"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toChatResponse(reply *chat.Reply) ChatResponse {
	return ChatResponse{
		ConversationID: reply.ConversationID,
		Reply:          reply.Content,
		Reason:         reply.Reason,
		DisplayText:    reply.DisplayText,
		Referenced:     reply.Referenced,
		Notices:        reply.Notices,
	}
}
