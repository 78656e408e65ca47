package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

type ChatClient interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, model string) (string, error)
}

type Service interface {
	// Ask — один запрос к модели, ошибка провайдера возвращается как есть.
	Ask(ctx context.Context, query string) (string, error)
	// Reply — то же, но пустой запрос и ошибки провайдера сворачиваются в ChatReply.
	Reply(ctx context.Context, query string) ChatReply
	// ReportFailure — лог + алерт по ошибке провайдера, которую вызывающий свернул сам.
	ReportFailure(ctx context.Context, err error)
}
