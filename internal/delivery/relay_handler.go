package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice_relay/internal/ai"
	"github.com/Vovarama1992/voice_relay/internal/config"
	"github.com/Vovarama1992/voice_relay/internal/domain"
	"github.com/Vovarama1992/voice_relay/internal/speech"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Transcriptions interface {
	Process(ctx context.Context, uploads []domain.Upload) []domain.TranscriptionResult
}

type RelayOptions struct {
	EmptyQueryPolicy string
	MaxUploadBytes   int64
	TempDir          string
}

type RelayHandler struct {
	ai             ai.Service
	transcriptions Transcriptions
	opts           RelayOptions
	log            *logger.ZapLogger
}

func NewRelayHandler(aiSvc ai.Service, tr Transcriptions, opts RelayOptions, log *logger.ZapLogger) *RelayHandler {
	return &RelayHandler{
		ai:             aiSvc,
		transcriptions: tr,
		opts:           opts,
		log:            log,
	}
}

// OpenAIResponse — POST /openai_response {"query": "..."}
func (h *RelayHandler) OpenAIResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}

	// пустое тело = пустой query
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	if h.opts.EmptyQueryPolicy == config.EmptyQueryReject {
		reply := h.ai.Reply(r.Context(), req.Query)
		switch {
		case reply.Failed() && req.Query == "":
			writeJSON(w, http.StatusBadRequest, reply)
		case reply.Failed():
			writeJSON(w, http.StatusBadGateway, reply)
		default:
			writeJSON(w, http.StatusOK, reply)
		}
		return
	}

	text, err := h.ai.Ask(r.Context(), req.Query)
	if err != nil {
		h.ai.ReportFailure(r.Context(), err)
		writeJSON(w, http.StatusBadGateway, ai.ChatReply{Error: ai.ErrorMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, ai.ChatReply{Text: text})
}

// Whisper — POST /whisper, multipart с любым количеством файлов.
func (h *RelayHandler) Whisper(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()

	if h.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	}

	var temps []*speech.TempAudio
	defer func() {
		for _, t := range temps {
			if err := t.Remove(); err != nil {
				h.log.Log(logger.LogEntry{Level: "warn", Message: "temp cleanup failed: " + t.Path, Service: "whisper", Error: err})
			}
		}
	}()

	uploads, err := h.spoolUploads(r, reqID, &temps)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %s", humanize.IBytes(uint64(tooLarge.Limit))))
			return
		}
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart req=" + reqID, Service: "whisper", Error: err})
		writeError(w, http.StatusBadRequest, "invalid multipart: "+err.Error())
		return
	}

	results := h.transcriptions.Process(r.Context(), uploads)

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("whisper req=%s done files=%d", reqID, len(results)),
		Service: "whisper",
	})

	writeJSON(w, http.StatusOK, results)
}

// spoolUploads читает части по порядку и сбрасывает каждую файловую часть на диск.
// Запрос без multipart — не ошибка, а пустой набор файлов.
func (h *RelayHandler) spoolUploads(r *http.Request, reqID string, temps *[]*speech.TempAudio) ([]domain.Upload, error) {
	uploads := make([]domain.Upload, 0)

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		return uploads, nil
	}
	if err != nil {
		return nil, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return uploads, nil
		}
		if err != nil {
			return nil, err
		}

		if part.FileName() == "" {
			part.Close()
			continue
		}

		tmp, err := speech.SpoolTemp(h.opts.TempDir, part, part.FileName())
		part.Close()
		if err != nil {
			return nil, err
		}
		*temps = append(*temps, tmp)

		h.log.Log(logger.LogEntry{
			Level:   "info",
			Message: fmt.Sprintf("whisper req=%s field=%q file=%q size=%s", reqID, part.FormName(), part.FileName(), humanize.Bytes(uint64(tmp.Size))),
			Service: "whisper",
		})

		uploads = append(uploads, domain.Upload{
			Field: part.FormName(),
			Name:  part.FileName(),
			Path:  tmp.Path,
			Size:  tmp.Size,
		})
	}
}
