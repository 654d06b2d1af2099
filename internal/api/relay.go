package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"aix-chat/backend/internal/llm"
)

// maxRelayBody caps the request body of the relay endpoint.
const maxRelayBody = 4 << 20

// RelayHandler hosts the inference endpoint itself: it accepts a role/content
// message list, forwards it upstream and streams the generated text back as
// plain UTF-8. The chat client talks to this same shape whether it points at
// this process or at an external deployment.
type RelayHandler struct {
	streamer   llm.CompletionStreamer
	configured bool
}

// NewRelayHandler wires the relay to its upstream. configured reports whether
// an API key is present; without one the endpoint refuses to stream.
func NewRelayHandler(streamer llm.CompletionStreamer, configured bool) *RelayHandler {
	return &RelayHandler{streamer: streamer, configured: configured}
}

// HandleChat godoc
// @Summary      Generate a reply
// @Description  Streams a model-generated reply for the given message list as plain text.
// @Tags         Relay
// @Accept       json
// @Produce      plain
// @Success      200  {string}  string  "Raw generated text, streamed"
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /chat [post]
func (h *RelayHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRelayBody))
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	var body struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	var entries []json.RawMessage
	if body.Messages == nil || json.Unmarshal(body.Messages, &entries) != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "messages must be an array"})
		return
	}

	// Entries that do not decode to a role/content pair with a known role
	// are dropped rather than rejected, so a sloppy client still gets a
	// reply for the valid part of its history.
	var messages []llm.Message
	for _, entry := range entries {
		var m llm.Message
		if err := json.Unmarshal(entry, &m); err != nil {
			continue
		}
		if m.Role != "user" && m.Role != "assistant" && m.Role != "system" {
			continue
		}
		if m.Content == "" {
			continue
		}
		messages = append(messages, m)
	}
	if len(messages) == 0 {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "messages array is empty or invalid"})
		return
	}

	if !h.configured {
		slog.Error("Relay request refused, no API key configured")
		respondWithJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Server is not configured. Missing OPENAI_API_KEY."})
		return
	}

	flusher, _ := w.(http.Flusher)
	started := false
	streamErr := h.streamer.StreamCompletion(r.Context(), messages, func(delta string) error {
		if !started {
			writeStreamHeader(w)
			started = true
		}
		if _, err := io.WriteString(w, delta); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	if streamErr != nil {
		if started {
			// The stream broke mid-flight, nothing sensible left to send.
			slog.Warn("Relay stream failed after partial output", "error", streamErr)
			return
		}
		slog.Error("Relay upstream failed", "error", streamErr)
		respondWithJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate response"})
		return
	}

	if !started {
		writeStreamHeader(w)
	}
}
