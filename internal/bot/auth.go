package bot

import (
	"errors"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/domain"
	"github.com/m3rciful/cashbot/internal/logger"
	"github.com/m3rciful/cashbot/internal/telegram/keyboard"
	"github.com/m3rciful/cashbot/internal/telegram/state"
	"github.com/m3rciful/cashbot/internal/telegram/tgctx"
)

// onStart greets a known user with the main menu or begins registration.
func (a *App) onStart(c tele.Context) error {
	ctx := tgctx.Build(c)

	user, err := a.svc.UserByTelegramID(ctx, senderID(c))
	switch {
	case err == nil && user != nil:
		a.fsm.Clear(c.Sender().ID)
		return c.Send("Добро пожаловать обратно! Выберите действие:", mainMenu())
	case errors.Is(err, domain.ErrNotFound):
		a.fsm.SetState(c.Sender().ID, state.StateAuthPassword)
		return c.Send("Вас приветствует кассовый помощник. Для продолжения, пожалуйста, введите пароль:")
	default:
		return err
	}
}

// onAuthPassword checks the shared registration password.
func (a *App) onAuthPassword(c tele.Context) error {
	if c.Text() != a.password {
		logger.Event(tgctx.Build(c), logger.TG, slog.LevelWarn, "registration password rejected")
		return c.Send("Неверный пароль. Попробуйте снова:")
	}

	sess := a.fsm.Session(c.Sender().ID)
	sess.Registration = &domain.RegistrationDraft{
		TelegramID: senderID(c),
		Username:   c.Sender().Username,
	}
	a.fsm.SetState(c.Sender().ID, state.StateAuthCashBalance)
	return c.Send("Введите начальный баланс в кассе (наличные):")
}

func (a *App) onAuthCashBalance(c tele.Context) error {
	amount, err := strconv.ParseInt(c.Text(), 10, 64)
	if err != nil {
		return c.Send("Пожалуйста, введите корректное число для начального баланса в кассе (наличные):")
	}

	sess := a.fsm.Session(c.Sender().ID)
	if sess.Registration == nil {
		a.fsm.Clear(c.Sender().ID)
		return c.Send("Регистрация прервана. Отправьте /start, чтобы начать заново.")
	}
	sess.Registration.CashBalance = amount
	a.fsm.SetState(c.Sender().ID, state.StateAuthNonCashBalance)
	return c.Send("Введите начальный баланс в кассе (безналичные):")
}

func (a *App) onAuthNonCashBalance(c tele.Context) error {
	amount, err := strconv.ParseInt(c.Text(), 10, 64)
	if err != nil {
		return c.Send("Пожалуйста, введите корректное число для начального баланса в кассе (безналичные):")
	}

	sess := a.fsm.Session(c.Sender().ID)
	if sess.Registration == nil {
		a.fsm.Clear(c.Sender().ID)
		return c.Send("Регистрация прервана. Отправьте /start, чтобы начать заново.")
	}

	ctx := tgctx.Build(c)
	reg := sess.Registration
	_, err = a.svc.Register(ctx, reg.TelegramID, reg.Username, reg.CashBalance, amount)
	a.fsm.Clear(c.Sender().ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return c.Send("Пользователь уже зарегистрирован. Выберите действие:", mainMenu())
		}
		return err
	}
	return c.Send("Пользователь создан. Выберите действие:", mainMenu())
}

// onCancel aborts any in-flight conversation.
func (a *App) onCancel(c tele.Context) error {
	a.fsm.Clear(c.Sender().ID)
	return c.Send("Действие отменено.", keyboard.RemoveKeyboard())
}

// requireUser resolves the sender to a registered user or replies with a
// pointer to /start.
func (a *App) requireUser(c tele.Context) (*domain.User, error) {
	user, err := a.svc.UserByTelegramID(tgctx.Build(c), senderID(c))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, c.Send("Вы не зарегистрированы. Отправьте /start для регистрации.")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
