package error_notificator

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type Service struct {
	infra Notificator
}

func NewService(infra Notificator) *Service {
	return &Service{infra: infra}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	return s.infra.Notify(ctx, err, fmt.Sprintf("%s\n\n%s", details, Diagnose(err)))
}

// Diagnose — короткая подсказка оператору по коду ответа провайдера
func Diagnose(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401:
			return "Invalid OpenAI API key."
		case 404:
			return "Model not found."
		case 429:
			return "OpenAI rate limit or quota exceeded."
		case 400:
			return "Bad request to OpenAI (check model and input)."
		case 500, 502, 503:
			return "OpenAI internal error."
		}
		return fmt.Sprintf("OpenAI error, status %d.", apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("OpenAI request failed, status %d.", reqErr.HTTPStatusCode)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Provider call timed out."
	}
	return "Unknown provider error."
}
