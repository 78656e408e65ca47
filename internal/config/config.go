package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EmptyQueryForward = "forward"
	EmptyQueryReject  = "reject"

	STTOpenAI   = "openai"
	STTDeepgram = "deepgram"
)

type Config struct {
	Port     string
	LogLevel string

	OpenAI   OpenAIConfig
	Deepgram DeepgramConfig
	Relay    RelayConfig
	Alerts   AlertsConfig
}

type OpenAIConfig struct {
	APIKey             string
	BaseURL            string
	ChatModel          string
	TranscriptionModel string
	Timeout            time.Duration
}

type DeepgramConfig struct {
	APIKey   string
	Model    string
	Language string
}

type RelayConfig struct {
	STTProvider        string
	EmptyQueryPolicy   string
	WhisperConcurrency int
	MaxUploadMB        int64
	TempDir            string
}

type AlertsConfig struct {
	TelegramToken string
	ChatIDs       []int64
}

// Load собирает конфиг из окружения. .env подтягивается в main до вызова.
func Load() (*Config, error) {
	timeout, err := durationEnv("OPENAI_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, err
	}
	concurrency, err := intEnv("WHISPER_CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}
	maxUpload, err := intEnv("MAX_UPLOAD_MB", 25)
	if err != nil {
		return nil, err
	}
	chats, err := chatIDsEnv("TELEGRAM_ALERT_CHATS")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:     envOr("PORT", "8080"),
		LogLevel: envOr("LOG_LEVEL", "info"),
		OpenAI: OpenAIConfig{
			APIKey:             os.Getenv("OPENAI_API_KEY"),
			BaseURL:            os.Getenv("OPENAI_BASE_URL"),
			ChatModel:          envOr("CHAT_MODEL", "gpt-4"),
			TranscriptionModel: envOr("TRANSCRIPTION_MODEL", "whisper-1"),
			Timeout:            timeout,
		},
		Deepgram: DeepgramConfig{
			APIKey:   os.Getenv("DEEPGRAM_API_KEY"),
			Model:    envOr("DEEPGRAM_MODEL", "nova-2"),
			Language: os.Getenv("DEEPGRAM_LANGUAGE"),
		},
		Relay: RelayConfig{
			STTProvider:        strings.ToLower(envOr("STT_PROVIDER", STTOpenAI)),
			EmptyQueryPolicy:   strings.ToLower(envOr("EMPTY_QUERY_POLICY", EmptyQueryForward)),
			WhisperConcurrency: concurrency,
			MaxUploadMB:        int64(maxUpload),
			TempDir:            os.Getenv("UPLOAD_TMP_DIR"),
		},
		Alerts: AlertsConfig{
			TelegramToken: os.Getenv("TELEGRAM_ALERT_TOKEN"),
			ChatIDs:       chats,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate не проверяет OPENAI_API_KEY: без ключа упадёт первый же запрос к провайдеру.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.OpenAI.ChatModel == "" {
		return fmt.Errorf("chat model must not be empty")
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai timeout must be positive, got %s", c.OpenAI.Timeout)
	}

	switch c.Relay.STTProvider {
	case STTOpenAI:
		if c.OpenAI.TranscriptionModel == "" {
			return fmt.Errorf("transcription model must not be empty")
		}
	case STTDeepgram:
		if c.Deepgram.APIKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required for stt provider %q", STTDeepgram)
		}
	default:
		return fmt.Errorf("unknown stt provider %q", c.Relay.STTProvider)
	}

	switch c.Relay.EmptyQueryPolicy {
	case EmptyQueryForward, EmptyQueryReject:
	default:
		return fmt.Errorf("unknown empty query policy %q", c.Relay.EmptyQueryPolicy)
	}

	if c.Relay.WhisperConcurrency < 1 {
		return fmt.Errorf("whisper concurrency must be >= 1, got %d", c.Relay.WhisperConcurrency)
	}
	if c.Relay.MaxUploadMB < 1 {
		return fmt.Errorf("max upload must be >= 1MB, got %d", c.Relay.MaxUploadMB)
	}
	if c.Alerts.TelegramToken != "" && len(c.Alerts.ChatIDs) == 0 {
		return fmt.Errorf("TELEGRAM_ALERT_CHATS is required when TELEGRAM_ALERT_TOKEN is set")
	}
	return nil
}

func (c *Config) MaxUploadBytes() int64 {
	return c.Relay.MaxUploadMB << 20
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func chatIDsEnv(key string) ([]int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	var ids []int64
	for _, raw := range strings.Split(v, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", key, raw, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
