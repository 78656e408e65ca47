package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client             *openai.Client
	transcriptionModel string
}

// NewOpenAIClient не валидирует ключ: пустой ключ всплывёт как 401 на первом запросе.
func NewOpenAIClient(apiKey, baseURL, transcriptionModel string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:             openai.NewClientWithConfig(cfg),
		transcriptionModel: transcriptionModel,
	}
}

func (c *OpenAIClient) GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, model string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe — Whisper
func (c *OpenAIClient) Transcribe(ctx context.Context, filePath string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: filePath,
	})
	if err != nil {
		return "", &CallError{Op: "whisper", Err: err}
	}
	return resp.Text, nil
}
