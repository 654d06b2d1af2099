package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	app_errors "aix-chat/backend/internal/errors"
	"aix-chat/backend/internal/export"
	"aix-chat/backend/internal/extract"
	"aix-chat/backend/internal/interfaces"

	"github.com/go-chi/chi/v5"
)

// maxAttachmentMemory caps how much of a multipart upload is buffered in
// memory before spilling to disk.
const maxAttachmentMemory = 8 << 20

// ChatHandler handles HTTP requests for conversation management and streaming.
type ChatHandler struct {
	service   interfaces.ChatService
	extractor extract.Extractor
}

func NewChatHandler(svc interfaces.ChatService, extractor extract.Extractor) *ChatHandler {
	return &ChatHandler{service: svc, extractor: extractor}
}

// CreateChatRequest is the DTO for creating a chat. The title is optional;
// an empty title falls back to the default.
type CreateChatRequest struct {
	Title string `json:"title,omitempty" example:"Trip planning"`
}

// GetChats godoc
// @Summary      List chats
// @Description  Returns every chat, most recently created first.
// @Tags         Chats
// @Produce      json
// @Success      200  {array}  model.Chat
// @Router       /v1/chats [get]
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.ListChats())
}

// GetChat godoc
// @Summary      Get a chat
// @Description  Returns a single chat with its full message history.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path  string  true  "Chat ID"
// @Success      200  {object}  model.Chat
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/chats/{chatID} [get]
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	chat, err := h.service.GetChat(chatID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chat)
}

// HandleCreateChat godoc
// @Summary      Create a chat
// @Description  Creates a new empty chat and makes it the current one.
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        chatRequest  body  CreateChatRequest  false  "Optional title"
// @Success      201  {object}  model.Chat
// @Router       /v1/chats [post]
func (h *ChatHandler) HandleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req CreateChatRequest
	// An empty body is allowed here, so a decode failure is only reported
	// when the client actually sent something malformed.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	chat := h.service.CreateChat(req.Title)
	respondWithJSON(w, http.StatusCreated, chat)
}

// HandleSelectChat godoc
// @Summary      Select a chat
// @Description  Marks the chat as the current one for subsequent turns.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path  string  true  "Chat ID"
// @Success      200  {object}  StatusResponse
// @Router       /v1/chats/{chatID}/select [post]
func (h *ChatHandler) HandleSelectChat(w http.ResponseWriter, r *http.Request) {
	h.service.SelectChat(chi.URLParam(r, "chatID"))
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// UpdateChatTitle godoc
// @Summary      Rename a chat
// @Description  Sets a new title for the chat.
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        chatID        path  string              true  "Chat ID"
// @Param        titleRequest  body  UpdateTitleRequest  true  "New title"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/chats/{chatID}/title [put]
func (h *ChatHandler) UpdateChatTitle(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.service.RenameChat(chatID, req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleDeleteChat godoc
// @Summary      Delete a chat
// @Description  Removes the chat and its messages.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path  string  true  "Chat ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/chats/{chatID} [delete]
func (h *ChatHandler) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteChat(chi.URLParam(r, "chatID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleImportChat godoc
// @Summary      Import a chat
// @Description  Imports a previously exported chat from its JSON form.
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Success      201  {object}  model.Chat
// @Failure      400  {object}  ErrorResponse
// @Router       /v1/chats/import [post]
func (h *ChatHandler) HandleImportChat(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		respondWithError(w, fmt.Errorf("%w: could not read request body", app_errors.ErrValidation))
		return
	}
	chat, err := export.ChatFromJSON(data)
	if err != nil {
		respondWithError(w, err)
		return
	}
	imported := h.service.ImportChat(chat)
	respondWithJSON(w, http.StatusCreated, imported)
}

// HandleExportChat godoc
// @Summary      Export a chat
// @Description  Serializes the chat as JSON or Markdown, per the format query parameter.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path   string  true   "Chat ID"
// @Param        format  query  string  false  "json or markdown"  default(json)
// @Success      200  {string}  string
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/chats/{chatID}/export [get]
func (h *ChatHandler) HandleExportChat(w http.ResponseWriter, r *http.Request) {
	chat, err := h.service.GetChat(chi.URLParam(r, "chatID"))
	if err != nil {
		respondWithError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		data, err := export.ChatToJSON(*chat)
		if err != nil {
			respondWithError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", chat.ID+".json"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", chat.ID+".md"))
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, export.ChatToMarkdown(*chat))
	default:
		respondWithError(w, fmt.Errorf("%w: unknown export format %q", app_errors.ErrValidation, format))
	}
}

// HandleAttachment godoc
// @Summary      Attach a file to a chat
// @Description  Extracts the text of an uploaded file and appends it as a user message.
// @Tags         Chats
// @Accept       multipart/form-data
// @Produce      json
// @Param        chatID  path      string  true  "Chat ID"
// @Param        file    formData  file    true  "File to attach"
// @Success      201  {object}  model.Message
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      415  {object}  ErrorResponse
// @Router       /v1/chats/{chatID}/attachments [post]
func (h *ChatHandler) HandleAttachment(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	if err := r.ParseMultipartForm(maxAttachmentMemory); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid multipart form", app_errors.ErrValidation))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, fmt.Errorf("%w: missing 'file' form field", app_errors.ErrValidation))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	text, err := h.extractor.Extract(header.Filename, contentType, header.Size, file)
	if err != nil {
		respondWithError(w, err)
		return
	}

	msg, err := h.service.AttachText(chatID, header.Filename, text)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}

// GetTokens godoc
// @Summary      Approximate token count
// @Description  Reports the estimated token footprint of the current chat.
// @Tags         Chats
// @Produce      json
// @Success      200  {object}  TokensResponse
// @Router       /v1/tokens [get]
func (h *ChatHandler) GetTokens(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, TokensResponse{Tokens: h.service.ApproxTokens()})
}

// HandleSendMessage godoc
// @Summary      Send a message
// @Description  Appends a user message and streams the assistant reply as plain text.
// @Tags         Messages
// @Accept       json
// @Produce      plain
// @Param        messageRequest  body  SendMessageRequest  true  "Message to send"
// @Success      200  {string}  string  "Raw assistant text, streamed"
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/chats/messages [post]
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	flusher, _ := w.(http.Flusher)
	started := false
	onChunk := func(delta string) {
		if !started {
			writeStreamHeader(w)
			started = true
		}
		if _, err := io.WriteString(w, delta); err != nil {
			slog.Warn("Could not write to message stream, client likely disconnected.", "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	result, err := h.service.SendMessage(r.Context(), req.ChatID, req.Content, onChunk)
	if err != nil {
		if started {
			// Headers are already on the wire, a JSON error body would
			// corrupt the stream. The partial reply stays in the chat.
			slog.Warn("Stream failed after partial output", "error", err)
			return
		}
		respondWithError(w, err)
		return
	}

	if !started {
		// The upstream produced no content at all. Still a success from
		// the client's point of view.
		writeStreamHeader(w)
	}
	slog.Info("Finished streaming reply.",
		"chat_id", result.ChatID, "message_id", result.AssistantMessageID, "cancelled", result.Cancelled)
}

// HandleStop godoc
// @Summary      Stop generation
// @Description  Cancels the in-flight assistant turn, if any.
// @Tags         Messages
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /v1/chats/stop [post]
func (h *ChatHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if h.service.Stop() {
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "stopped"})
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "idle"})
}

func writeStreamHeader(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
}
