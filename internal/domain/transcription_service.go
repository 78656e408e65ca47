package domain

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice_relay/internal/ai"
	"github.com/Vovarama1992/voice_relay/internal/error_notificator"
	"golang.org/x/sync/errgroup"
)

type Transcriber interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

type Replier interface {
	Reply(ctx context.Context, query string) ai.ChatReply
}

// Upload — один файл из multipart-запроса, уже лежащий на диске.
type Upload struct {
	Field string // имя части формы, уходит в ответ как filename
	Name  string
	Path  string
	Size  int64
}

type TranscriptionResult struct {
	Filename       string       `json:"filename"`
	Transcript     string       `json:"transcript"`
	OpenAIResponse ai.ChatReply `json:"openai_response"`
}

type TranscriptionService struct {
	stt         Transcriber
	chat        Replier
	notifier    error_notificator.Notificator
	concurrency int
	log         *logger.ZapLogger
}

func NewTranscriptionService(
	stt Transcriber,
	chat Replier,
	notifier error_notificator.Notificator,
	concurrency int,
	log *logger.ZapLogger,
) *TranscriptionService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &TranscriptionService{
		stt:         stt,
		chat:        chat,
		notifier:    notifier,
		concurrency: concurrency,
		log:         log,
	}
}

// Process возвращает ровно один результат на каждый upload, в том же порядке.
// При concurrency == 1 файлы обрабатываются строго последовательно.
func (s *TranscriptionService) Process(ctx context.Context, uploads []Upload) []TranscriptionResult {
	results := make([]TranscriptionResult, len(uploads))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, u := range uploads {
		g.Go(func() error {
			results[i] = s.processOne(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *TranscriptionService) processOne(ctx context.Context, u Upload) TranscriptionResult {
	res := TranscriptionResult{Filename: u.Field}

	transcript, err := s.stt.Transcribe(ctx, u.Path)
	if err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: fmt.Sprintf("transcription failed for %q", u.Field),
			Service: "whisper",
			Error:   err,
		})
		if nerr := s.notifier.Notify(ctx, err, "transcription of "+u.Name); nerr != nil {
			s.log.Log(logger.LogEntry{Level: "warn", Message: "notify failed", Service: "whisper", Error: nerr})
		}
		res.OpenAIResponse = ai.ChatReply{Error: ai.ErrorMessage(err)}
		return res
	}

	res.Transcript = transcript
	res.OpenAIResponse = s.chat.Reply(ctx, transcript)
	return res
}
