package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice_relay/internal/error_notificator"
	openai "github.com/sashabaranov/go-openai"
)

const SystemPrompt = "You are a helpful assistant."

type AiService struct {
	client   ChatClient
	model    string
	timeout  time.Duration
	notifier error_notificator.Notificator
	log      *logger.ZapLogger
}

func NewAiService(
	client ChatClient,
	model string,
	timeout time.Duration,
	notifier error_notificator.Notificator,
	log *logger.ZapLogger,
) *AiService {
	return &AiService{
		client:   client,
		model:    model,
		timeout:  timeout,
		notifier: notifier,
		log:      log,
	}
}

func (s *AiService) Ask(ctx context.Context, query string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}

	ctxGPT, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.client.GetCompletion(ctxGPT, messages, s.model)
	if err != nil {
		return "", &CallError{
			Op:  fmt.Sprintf("chat completion (%s, %.1fs)", s.model, time.Since(start).Seconds()),
			Err: err,
		}
	}
	return reply, nil
}

func (s *AiService) Reply(ctx context.Context, query string) ChatReply {
	if query == "" {
		return ChatReply{Error: MessageRequired}
	}

	reply, err := s.Ask(ctx, query)
	if err != nil {
		s.ReportFailure(ctx, err)
		return ChatReply{Error: ErrorMessage(err)}
	}
	return ChatReply{Text: reply}
}

// ReportFailure пишет ошибку провайдера в лог и отправляет алерт.
func (s *AiService) ReportFailure(ctx context.Context, err error) {
	s.log.Log(logger.LogEntry{
		Level:   "error",
		Message: "Error getting OpenAI response",
		Service: "ai",
		Error:   err,
	})

	if nerr := s.notifier.Notify(ctx, err, "model: "+s.model); nerr != nil {
		s.log.Log(logger.LogEntry{Level: "warn", Message: "notify failed", Service: "ai", Error: nerr})
	}
}
