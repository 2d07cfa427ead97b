package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"daybook/pkg/conversation"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	conversation_id TEXT PRIMARY KEY,
	chat_history    TEXT NOT NULL,
	awaiting        INTEGER NOT NULL DEFAULT 0,
	updated_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);`

// SQLite keeps conversation records in a single database file, or in memory
// when opened with ":memory:".
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens the database at path and ensures the schema exists.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("missing database path")
	}

	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{
		db: db,
	}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Load(ctx context.Context, conversationID string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT conversation_id, chat_history, awaiting FROM conversations WHERE conversation_id = ?`,
		conversationID)

	var record Record
	var history string
	var awaiting int

	if err := row.Scan(&record.ConversationID, &history, &awaiting); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}

		return Record{}, err
	}

	if err := json.Unmarshal([]byte(history), &record.ChatHistory); err != nil {
		return Record{}, fmt.Errorf("decode conversation %s: %w", conversationID, err)
	}

	record.AwaitingUserResponse = awaiting != 0

	return record, nil
}

func (s *SQLite) Save(ctx context.Context, record Record) error {
	if record.ConversationID == "" {
		return errors.New("missing conversation id")
	}

	if record.ChatHistory == nil {
		record.ChatHistory = []conversation.Turn{}
	}

	history, err := json.Marshal(record.ChatHistory)

	if err != nil {
		return err
	}

	awaiting := 0

	if record.AwaitingUserResponse {
		awaiting = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations (conversation_id, chat_history, awaiting)
		 VALUES (?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
		   chat_history = excluded.chat_history,
		   awaiting     = excluded.awaiting,
		   updated_at   = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		record.ConversationID, string(history), awaiting)

	return err
}

func (s *SQLite) Delete(ctx context.Context, conversationID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE conversation_id = ?`, conversationID)

	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id FROM conversations ORDER BY updated_at DESC, conversation_id`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string

		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
