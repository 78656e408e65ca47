package main

import (
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voice_relay/internal/ai"
	"github.com/Vovarama1992/voice_relay/internal/config"
	"github.com/Vovarama1992/voice_relay/internal/delivery"
	"github.com/Vovarama1992/voice_relay/internal/domain"
	"github.com/Vovarama1992/voice_relay/internal/error_notificator"
	"github.com/Vovarama1992/voice_relay/internal/speech"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zapCfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = lvl
	}
	baseLogger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var errInfra error_notificator.Notificator = error_notificator.NewLogInfra(zl)
	if cfg.Alerts.TelegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Alerts.TelegramToken)
		if err != nil {
			log.Fatalf("failed to init telegram alert bot: %v", err)
		}
		errInfra = error_notificator.NewInfra(bot, cfg.Alerts.ChatIDs, zl)
	}
	errService := error_notificator.NewService(errInfra)

	// =========================================================================
	// CLIENTS
	// =========================================================================

	openAIClient := ai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.TranscriptionModel)

	var sttClient speech.STTClient = openAIClient // Whisper
	if cfg.Relay.STTProvider == config.STTDeepgram {
		sttClient = speech.NewDeepgramClient(cfg.Deepgram.APIKey, cfg.Deepgram.Model, cfg.Deepgram.Language)
	}

	// =========================================================================
	// SERVICES
	// =========================================================================

	aiService := ai.NewAiService(openAIClient, cfg.OpenAI.ChatModel, cfg.OpenAI.Timeout, errService, zl)
	speechService := speech.NewService(sttClient, cfg.OpenAI.Timeout)
	transcriptionService := domain.NewTranscriptionService(
		speechService,
		aiService,
		errService,
		cfg.Relay.WhisperConcurrency,
		zl,
	)

	// =========================================================================
	// HTTP
	// =========================================================================

	relayHandler := delivery.NewRelayHandler(aiService, transcriptionService, delivery.RelayOptions{
		EmptyQueryPolicy: cfg.Relay.EmptyQueryPolicy,
		MaxUploadBytes:   cfg.MaxUploadBytes(),
		TempDir:          cfg.Relay.TempDir,
	}, zl)

	r := delivery.NewRouter(relayHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + srv.Addr + " stt=" + cfg.Relay.STTProvider + " model=" + cfg.OpenAI.ChatModel,
		Service: "voice_relay",
	})

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
