package error_notificator

import "context"

type Notificator interface {
	// Notify — сообщает операторам об ошибке провайдера
	Notify(ctx context.Context, err error, details string) error
}
