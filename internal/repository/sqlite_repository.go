package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"aix-chat/backend/internal/model"
)

type sqliteGateway struct {
	db *sql.DB
}

// NewSQLiteGateway stores the conversation blob in the `blobs` table created
// by the database migrations (one row per key).
func NewSQLiteGateway(db *sql.DB) Gateway {
	return &sqliteGateway{db: db}
}

func (g *sqliteGateway) Load(ctx context.Context, key string) []model.Chat {
	var payload []byte
	row := g.db.QueryRowContext(ctx, "SELECT payload FROM blobs WHERE key = ?", key)
	if err := row.Scan(&payload); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Could not read conversation blob, starting empty", "key", key, "error", err)
		}
		return []model.Chat{}
	}

	var chats []model.Chat
	if err := json.Unmarshal(payload, &chats); err != nil {
		slog.Warn("Conversation blob is corrupt, starting empty", "key", key, "error", err)
		return []model.Chat{}
	}
	if chats == nil {
		return []model.Chat{}
	}
	return chats
}

func (g *sqliteGateway) Save(ctx context.Context, key string, chats []model.Chat) error {
	if chats == nil {
		chats = []model.Chat{}
	}
	payload, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("%w: could not marshal collection: %v", ErrSave, err)
	}

	query := `
		INSERT INTO blobs (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	if _, err := g.db.ExecContext(ctx, query, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	return nil
}
