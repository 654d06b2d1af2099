package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// CompletionStreamer is the upstream the relay endpoint proxies: given the
// ordered wire messages, it invokes onDelta for every piece of generated text.
// Returning an error from onDelta aborts the stream.
type CompletionStreamer interface {
	StreamCompletion(ctx context.Context, messages []Message, onDelta func(string) error) error
}

type openAIStreamer struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIStreamer builds the OpenAI-backed upstream. baseURL is optional
// and exists for OpenAI-compatible servers.
func NewOpenAIStreamer(apiKey, baseURL, model, systemPrompt string) CompletionStreamer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIStreamer{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		systemPrompt: systemPrompt,
	}
}

func (s *openAIStreamer) StreamCompletion(ctx context.Context, messages []Message, onDelta func(string) error) error {
	req := openai.ChatCompletionRequest{
		Model:  s.model,
		Stream: true,
	}
	if s.systemPrompt != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: s.systemPrompt,
		})
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("could not start completion stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("completion stream failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			if err := onDelta(delta); err != nil {
				return err
			}
		}
	}
}
