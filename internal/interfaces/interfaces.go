package interfaces

import (
	"context"

	"aix-chat/backend/internal/model"
	"aix-chat/backend/internal/service"
)

// This file defines the interfaces for our core services.
// Depending on these interfaces, instead of concrete implementations, allows
// for decoupling (e.g., API layer from Service layer) and easier testing via
// stubbing.

// ChatService defines the contract for conversation business logic.
type ChatService interface {
	// SendMessage runs one assistant turn, streaming raw text pieces to
	// onChunk as they are applied to the store.
	SendMessage(ctx context.Context, chatID, text string, onChunk func(string)) (*service.SendResult, error)
	// Stop cancels the in-flight turn, reporting whether there was one.
	Stop() bool

	ListChats() []model.Chat
	GetChat(chatID string) (*model.Chat, error)
	CreateChat(title string) model.Chat
	SelectChat(chatID string)
	RenameChat(chatID, title string) error
	DeleteChat(chatID string) error
	ImportChat(chat model.Chat) model.Chat
	AttachText(chatID, filename, text string) (*model.Message, error)
	ApproxTokens() int
}
