package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"aix-chat/backend/internal/model"
)

type redisGateway struct {
	rdb *redis.Client
}

// NewRedisGateway stores the conversation blob as a plain string value under
// the namespaced key. Same JSON envelope as the SQLite gateway, so the two
// backends are interchangeable.
func NewRedisGateway(rdb *redis.Client) Gateway {
	return &redisGateway{rdb: rdb}
}

func (g *redisGateway) Load(ctx context.Context, key string) []model.Chat {
	raw, err := g.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Could not read conversation blob, starting empty", "key", key, "error", err)
		}
		return []model.Chat{}
	}

	var chats []model.Chat
	if err := json.Unmarshal(raw, &chats); err != nil {
		slog.Warn("Conversation blob is corrupt, starting empty", "key", key, "error", err)
		return []model.Chat{}
	}
	if chats == nil {
		return []model.Chat{}
	}
	return chats
}

func (g *redisGateway) Save(ctx context.Context, key string, chats []model.Chat) error {
	if chats == nil {
		chats = []model.Chat{}
	}
	payload, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("%w: could not marshal collection: %v", ErrSave, err)
	}
	if err := g.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	return nil
}
