package notify

import (
	"context"

	"taskManager/internal/logger"
	"taskManager/internal/models/reset"

	"go.uber.org/zap"
)

// LogNotifier имитирует отправку инструкций по сбросу пароля записью в лог
type LogNotifier struct {
	// ExposeToken пишет сам токен в лог, только для разработки
	ExposeToken bool
}

func (n LogNotifier) Deliver(ctx context.Context, receipt reset.Receipt, token string) error {
	fields := []zap.Field{
		zap.String("email", receipt.Email),
		zap.String("method", string(receipt.Method)),
		zap.String("target", receipt.Target),
		zap.Time("expires_at", receipt.ExpiresAt),
	}
	if n.ExposeToken {
		fields = append(fields, zap.String("token", token))
	}
	logger.Info("Notify: Инструкции по сбросу пароля отправлены (имитация)", fields...)
	return nil
}
