package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	apperrors "aix-chat/backend/internal/errors"
	"aix-chat/backend/internal/model"
)

// Message is the wire shape of a conversation entry: role and content only,
// stripped of ids and timestamps.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chunk is one decoded piece of a streamed reply. Chunks are partial text,
// never complete units; callers concatenate them.
type Chunk struct {
	Content string
}

// ReplyStreamer sends an ordered message list to the remote inference
// endpoint and yields the reply as decoded text chunks. The channel is always
// closed before return. Cancellation through ctx stops the stream promptly
// and surfaces as ctx's error, which callers treat as a quiet finish, not a
// transport failure.
type ReplyStreamer interface {
	StreamReply(ctx context.Context, messages []model.Message, ch chan<- Chunk) error
}

type replyClient struct {
	client   *http.Client
	endpoint string
}

// NewReplyClient talks to a `POST {messages} -> raw text byte stream`
// endpoint such as the relay this binary hosts.
func NewReplyClient(endpoint string) ReplyStreamer {
	return &replyClient{
		client:   &http.Client{},
		endpoint: endpoint,
	}
}

type chatRequest struct {
	Messages []Message `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ToWire strips a message list down to the outbound role/content pairs.
func ToWire(messages []model.Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}

func (c *replyClient) StreamReply(ctx context.Context, messages []model.Message, ch chan<- Chunk) error {
	defer close(ch)

	body, err := json.Marshal(chatRequest{Messages: ToWire(messages)})
	if err != nil {
		return fmt.Errorf("%w: could not marshal request: %v", apperrors.ErrStreaming, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: could not create request: %v", apperrors.ErrStreaming, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: request failed: %v", apperrors.ErrStreaming, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", apperrors.ErrStreaming, readErrorMessage(resp))
	}

	return c.consume(ctx, resp.Body, ch)
}

// readErrorMessage attempts to pull the structured `{"error": ...}` message
// out of a failure body, falling back to a generic description.
func readErrorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var payload errorResponse
		if jsonErr := json.Unmarshal(raw, &payload); jsonErr == nil && payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("remote endpoint returned status %d", resp.StatusCode)
}

// consume reads the raw byte stream, carrying any incomplete trailing UTF-8
// sequence over to the next read so emitted chunks never split a rune. A read
// may therefore produce an empty emission; that is normal.
func (c *replyClient) consume(ctx context.Context, body io.Reader, ch chan<- Chunk) error {
	buf := make([]byte, 4096)
	var pending []byte

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			cut := completeRuneBoundary(pending)
			if cut > 0 {
				select {
				case ch <- Chunk{Content: string(pending[:cut])}:
				case <-ctx.Done():
					return ctx.Err()
				}
				pending = pending[cut:]
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				if len(pending) > 0 {
					// Truncated trailing sequence; emit as-is so nothing is lost.
					select {
					case ch <- Chunk{Content: string(pending)}:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: reading response body: %v", apperrors.ErrStreaming, readErr)
		}
	}
}

// completeRuneBoundary returns the length of the longest prefix of b that
// ends on a complete rune. Only a possibly-unfinished multi-byte sequence at
// the very end is held back; invalid bytes elsewhere pass through unchanged.
func completeRuneBoundary(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
