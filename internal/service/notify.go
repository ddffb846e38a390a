package service

import (
	"context"
	"log/slog"

	"github.com/m3rciful/cashbot/internal/logger"
)

// SendFunc delivers a plain text message to one user by transport identity.
type SendFunc func(telegramID, text string) error

// NotifyAll broadcasts text to every registered user. Delivery is
// best-effort: a failure for one recipient is logged and the loop continues.
// Returns the number of successful deliveries.
func (s *Service) NotifyAll(ctx context.Context, send SendFunc, text string) int {
	users, err := s.store.AllUsers(ctx)
	if err != nil {
		logger.Event(ctx, logger.NOTIFY, slog.LevelError, "fanout list users failed",
			slog.String("err", err.Error()),
		)
		return 0
	}

	delivered := 0
	for _, u := range users {
		if err := send(u.TelegramID, text); err != nil {
			logger.Event(ctx, logger.NOTIFY, slog.LevelWarn, "fanout delivery failed",
				slog.String("recipient", u.TelegramID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			continue
		}
		delivered++
	}

	logger.Event(ctx, logger.NOTIFY, slog.LevelInfo, "fanout complete",
		slog.Int("recipients", len(users)),
		slog.Int("delivered", delivered),
	)
	return delivered
}
