package model

import (
	"fmt"
	"strings"
	"time"

	apperrors "aix-chat/backend/internal/errors"
)

// Role tags a message with its author kind. Only the three values below are
// accepted by the remote endpoint, so NewMessage rejects anything else.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one of the accepted values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single unit of conversation content. Content is mutable only
// through the store's update path during streaming; everything else is fixed
// at construction.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Chat is a titled, timestamped, ordered sequence of messages. Message order
// is append-only insertion order and doubles as display order.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// DefaultChatTitle is used when a chat is created without a usable title.
const DefaultChatTitle = "New Chat"

// Clock supplies timestamps. Injectable so tests get deterministic values.
type Clock func() time.Time

type options struct {
	clock Clock
}

// Option customizes entity construction.
type Option func(*options)

// WithClock overrides the timestamp source.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

func applyOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// NewMessage constructs a validated message. The content is trimmed and must
// be non-empty; the role must be one of the known values.
func NewMessage(role Role, content string, opts ...Option) (Message, error) {
	if !role.Valid() {
		return Message{}, fmt.Errorf("%w: invalid role %q", apperrors.ErrValidation, role)
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Message{}, fmt.Errorf("%w: content must be a non-empty string", apperrors.ErrValidation)
	}
	o := applyOptions(opts)
	return Message{
		ID:        NewID(MessageIDPrefix),
		Role:      role,
		Content:   trimmed,
		CreatedAt: o.clock(),
	}, nil
}

// NewPlaceholderMessage creates an assistant message with empty content,
// bypassing the non-empty-content rule. Streamed replies start out empty and
// fill in incrementally, so only the store's start path should call this.
func NewPlaceholderMessage(opts ...Option) Message {
	o := applyOptions(opts)
	return Message{
		ID:        NewID(MessageIDPrefix),
		Role:      RoleAssistant,
		Content:   "",
		CreatedAt: o.clock(),
	}
}

// NewChat constructs an empty chat. A title that trims to nothing falls back
// to DefaultChatTitle.
func NewChat(title string, opts ...Option) Chat {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		trimmed = DefaultChatTitle
	}
	o := applyOptions(opts)
	return Chat{
		ID:        NewID(ChatIDPrefix),
		Title:     trimmed,
		CreatedAt: o.clock(),
		Messages:  []Message{},
	}
}
