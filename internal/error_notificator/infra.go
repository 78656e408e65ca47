package error_notificator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Infra struct {
	bot     sender
	chatIDs []int64
	log     *logger.ZapLogger
}

func NewInfra(bot *tgbotapi.BotAPI, chatIDs []int64, log *logger.ZapLogger) *Infra {
	return &Infra{bot: bot, chatIDs: chatIDs, log: log}
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf("❗ Ошибка в voice_relay\n\nОшибка: %v\n\nДетали: %s", err, details)

	var errs []error
	for _, chatID := range i.chatIDs {
		if _, sendErr := i.bot.Send(tgbotapi.NewMessage(chatID, text)); sendErr != nil {
			i.log.Log(logger.LogEntry{
				Level:   "error",
				Message: fmt.Sprintf("alert send fail to %d", chatID),
				Service: "error_notificator",
				Error:   sendErr,
			})
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, sendErr))
		}
	}
	return errors.Join(errs...)
}

// LogInfra — когда телеграм-алерты выключены, ошибка просто уходит в лог
type LogInfra struct {
	log *logger.ZapLogger
}

func NewLogInfra(log *logger.ZapLogger) *LogInfra {
	return &LogInfra{log: log}
}

func (i *LogInfra) Notify(_ context.Context, err error, details string) error {
	i.log.Log(logger.LogEntry{
		Level:   "warn",
		Message: details,
		Service: "error_notificator",
		Error:   err,
	})
	return nil
}
