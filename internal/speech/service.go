package speech

import (
	"context"
	"time"

	"github.com/Vovarama1992/voice_relay/internal/ai"
)

type Service struct {
	stt     STTClient
	timeout time.Duration
}

func NewService(stt STTClient, timeout time.Duration) *Service {
	return &Service{stt: stt, timeout: timeout}
}

// Transcribe ограничивает каждый вызов провайдера таймаутом; при timeout <= 0 ждёт сколько даст ctx.
func (s *Service) Transcribe(ctx context.Context, filePath string) (string, error) {
	if s.timeout > 0 {
		ctxSTT, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		ctx = ctxSTT
	}

	text, err := s.stt.Transcribe(ctx, filePath)
	if err != nil {
		return "", &ai.CallError{Op: "transcribe", Err: err}
	}
	return text, nil
}
