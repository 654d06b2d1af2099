package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	apperrors "aix-chat/backend/internal/errors"
	"aix-chat/backend/internal/llm"
	"aix-chat/backend/internal/model"
	"aix-chat/backend/internal/store"
)

// ChatService drives one assistant turn end to end: append the user message,
// start the placeholder, consume the reply stream into the store, and
// finalize no matter how the stream ends. At most one turn is in flight; Stop
// cancels it cooperatively.
type ChatService struct {
	store    *store.Store
	streamer llm.ReplyStreamer

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewChatService(st *store.Store, streamer llm.ReplyStreamer) *ChatService {
	return &ChatService{store: st, streamer: streamer}
}

// SendResult describes a completed (or cancelled) assistant turn.
type SendResult struct {
	ChatID             string
	UserMessageID      string
	AssistantMessageID string
	Content            string
	Cancelled          bool
}

// SendMessage appends text as a user message to the target chat (the current
// selection when chatID is empty; a fresh chat when nothing is selected),
// then streams the assistant reply, calling onChunk with each raw text piece
// as it is applied to the store. Blocks until the stream finishes. User
// cancellation is not an error: the turn finalizes quietly with
// Cancelled=true and whatever partial content arrived.
func (s *ChatService) SendMessage(ctx context.Context, chatID, text string, onChunk func(string)) (*SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: message text must not be empty", apperrors.ErrValidation)
	}
	if s.store.IsStreaming() {
		return nil, apperrors.ErrBusy
	}

	targetID := chatID
	if targetID == "" {
		targetID = s.store.CurrentChatID()
	}
	if targetID == "" {
		targetID = s.store.NewChat(model.DefaultChatTitle).ID
	} else if s.store.Chat(targetID) == nil {
		return nil, fmt.Errorf("%w: chat %s", apperrors.ErrNotFound, targetID)
	}
	if s.store.CurrentChatID() != targetID {
		s.store.SelectChat(targetID)
	}

	sent := s.store.SendUserMessage(text, targetID)
	if sent == nil {
		return nil, fmt.Errorf("%w: could not append message", apperrors.ErrInternal)
	}

	placeholder := s.store.StartAssistant()
	if placeholder == nil {
		return nil, apperrors.ErrBusy
	}
	// The one guaranteed way back to idle, taken on success, cancellation and
	// error alike.
	defer s.store.FinalizeAssistant()

	streamCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	history := s.historyFor(targetID)

	ch := make(chan llm.Chunk)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.streamer.StreamReply(streamCtx, history, ch)
	}()

	var accumulated strings.Builder
	for chunk := range ch {
		if chunk.Content == "" {
			continue
		}
		accumulated.WriteString(chunk.Content)
		// Full accumulated text, not a delta: the store replaces content.
		s.store.UpdateAssistant(accumulated.String(), placeholder.ID)
		if onChunk != nil {
			onChunk(chunk.Content)
		}
	}

	result := &SendResult{
		ChatID:             targetID,
		UserMessageID:      sent.ID,
		AssistantMessageID: placeholder.ID,
		Content:            accumulated.String(),
	}

	if err := <-errCh; err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("Reply stream cancelled by user", "chat_id", targetID)
			result.Cancelled = true
			return result, nil
		}
		slog.Warn("Reply stream failed", "chat_id", targetID, "error", err)
		return nil, err
	}
	return result, nil
}

// Stop cancels the in-flight assistant turn, if any. Cooperative: the stream
// stops yielding promptly and SendMessage finalizes the store on its way out.
func (s *ChatService) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// historyFor returns the target chat's messages minus the still-empty
// placeholder at the tail, which must not be sent to the remote endpoint.
func (s *ChatService) historyFor(chatID string) []model.Message {
	chat := s.store.Chat(chatID)
	if chat == nil {
		return nil
	}
	messages := chat.Messages
	if n := len(messages); n > 0 && messages[n-1].Role == model.RoleAssistant && messages[n-1].Content == "" {
		messages = messages[:n-1]
	}
	return messages
}

// ListChats returns the full collection, newest first.
func (s *ChatService) ListChats() []model.Chat {
	return s.store.Chats()
}

// GetChat returns one chat by id.
func (s *ChatService) GetChat(chatID string) (*model.Chat, error) {
	chat := s.store.Chat(chatID)
	if chat == nil {
		return nil, fmt.Errorf("%w: chat %s", apperrors.ErrNotFound, chatID)
	}
	return chat, nil
}

// CreateChat creates, selects and returns a new chat.
func (s *ChatService) CreateChat(title string) model.Chat {
	return s.store.NewChat(title)
}

// SelectChat moves the selection.
func (s *ChatService) SelectChat(chatID string) {
	s.store.SelectChat(chatID)
}

// RenameChat updates a chat's title.
func (s *ChatService) RenameChat(chatID, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", apperrors.ErrValidation)
	}
	if s.store.Chat(chatID) == nil {
		return fmt.Errorf("%w: chat %s", apperrors.ErrNotFound, chatID)
	}
	s.store.RenameChat(chatID, title)
	return nil
}

// DeleteChat removes a chat and reconciles the selection.
func (s *ChatService) DeleteChat(chatID string) error {
	if s.store.Chat(chatID) == nil {
		return fmt.Errorf("%w: chat %s", apperrors.ErrNotFound, chatID)
	}
	s.store.DeleteChat(chatID)
	return nil
}

// ImportChat normalizes and adds a chat-shaped value as the new current chat.
func (s *ChatService) ImportChat(chat model.Chat) model.Chat {
	return s.store.ImportChat(chat)
}

// AttachText appends extracted file text to the target chat as a user
// message, prefixed with the file name for context.
func (s *ChatService) AttachText(chatID, filename, text string) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: extracted text is empty", apperrors.ErrValidation)
	}
	if s.store.Chat(chatID) == nil {
		return nil, fmt.Errorf("%w: chat %s", apperrors.ErrNotFound, chatID)
	}
	content := text
	if filename != "" {
		content = fmt.Sprintf("[%s]\n%s", filename, text)
	}
	msg := s.store.SendUserMessage(content, chatID)
	if msg == nil {
		return nil, fmt.Errorf("%w: could not append message", apperrors.ErrInternal)
	}
	return msg, nil
}

// ApproxTokens reports the advisory token estimate for the current chat.
func (s *ChatService) ApproxTokens() int {
	return s.store.ApproxTokens()
}
