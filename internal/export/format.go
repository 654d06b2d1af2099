// Package export serializes chats for the import/export boundary: structured
// JSON for round-tripping, Markdown for human-readable sharing.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "aix-chat/backend/internal/errors"
	"aix-chat/backend/internal/model"
)

// ChatToJSON renders a chat as indented JSON.
func ChatToJSON(chat model.Chat) ([]byte, error) {
	out, err := json.MarshalIndent(chat, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: could not serialize chat: %v", apperrors.ErrInternal, err)
	}
	return out, nil
}

// ChatToMarkdown renders a chat as a title header, the creation timestamp,
// then one section per message labeled by role.
func ChatToMarkdown(chat model.Chat) string {
	title := chat.Title
	if title == "" {
		title = "Chat"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Created: %s\n\n", chat.CreatedAt.Format(time.RFC3339))
	for i, m := range chat.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n", m.Role, m.Content)
	}
	return b.String()
}

// ChatFromJSON parses a chat-shaped payload from the import boundary. The
// shape is checked here; field normalization (missing id/title/createdAt/
// messages) is the store's job on import.
func ChatFromJSON(raw []byte) (model.Chat, error) {
	var chat model.Chat
	if err := json.Unmarshal(raw, &chat); err != nil {
		return model.Chat{}, fmt.Errorf("%w: not a valid chat document: %v", apperrors.ErrValidation, err)
	}
	for _, m := range chat.Messages {
		if m.Role != "" && !m.Role.Valid() {
			return model.Chat{}, fmt.Errorf("%w: unknown message role %q", apperrors.ErrValidation, m.Role)
		}
	}
	return chat, nil
}
