// Package store persists conversation state between process runs.
package store

import (
	"context"
	"errors"

	"daybook/pkg/conversation"
)

// ErrNotFound is reported when a conversation has no persisted record.
var ErrNotFound = errors.New("conversation not found")

// Record is the persisted form of a conversation. Keywords are derived state
// and recomputed on the next exchange, so they are not stored.
type Record struct {
	ConversationID       string              `json:"conversation_id"`
	ChatHistory          []conversation.Turn `json:"chat_history"`
	AwaitingUserResponse bool                `json:"awaiting_user_response"`
}

// Store reads and writes conversation records.
type Store interface {
	Load(ctx context.Context, conversationID string) (Record, error)
	Save(ctx context.Context, record Record) error
	Delete(ctx context.Context, conversationID string) error
	List(ctx context.Context) ([]string, error)
}

// Serialize captures a conversation's persistent fields.
func Serialize(state *conversation.State) Record {
	return Record{
		ConversationID:       state.ID,
		ChatHistory:          state.Turns,
		AwaitingUserResponse: state.Awaiting,
	}
}

// Deserialize restores a conversation from a record. Absent fields take their
// defaults: a record without an identity gets a fresh one, without history an
// empty one, without the awaiting flag false. Keywords rebuild from the last
// user turn.
func Deserialize(record Record) *conversation.State {
	state := conversation.NewState()

	if record.ConversationID != "" {
		state.ID = record.ConversationID
	}

	state.Turns = record.ChatHistory
	state.Awaiting = record.AwaitingUserResponse

	for i := len(state.Turns) - 1; i >= 0; i-- {
		if state.Turns[i].Role == conversation.RoleUser {
			state.Keywords = conversation.Keywords(state.Turns[i].Content)
			break
		}
	}

	return state
}
