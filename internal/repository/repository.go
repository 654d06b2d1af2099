package repository

import (
	"context"

	"aix-chat/backend/internal/model"
)

// DefaultKey is the namespaced key the conversation collection is stored
// under when no other key is configured.
const DefaultKey = "aix.chats"

// Gateway persists the full conversation collection as a single opaque JSON
// blob under a namespaced key. This interface makes it easy to switch storage
// implementations (SQLite file, Redis) and to fake persistence in tests.
//
// Load never fails: a missing key, a non-array payload, or corrupt JSON all
// degrade to an empty collection. Save is best-effort; callers treat a
// returned error as "changes are not durable" and must not fail a user-facing
// action because of it.
type Gateway interface {
	Load(ctx context.Context, key string) []model.Chat
	Save(ctx context.Context, key string, chats []model.Chat) error
}
