package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/telegram/keyboard"
)

func (a *App) onBalanceMenu(c tele.Context) error {
	return c.Send("Выберите кассу:", keyboard.ReplyButtons(
		[]string{btnCashDesk},
		[]string{btnNonCashDesk},
	))
}

func (a *App) onCashBalance(c tele.Context) error {
	user, err := a.requireUser(c)
	if user == nil || err != nil {
		return err
	}
	return c.Send(fmt.Sprintf("Ваш баланс наличной кассы %d руб.", user.CashBalance))
}

func (a *App) onNonCashBalance(c tele.Context) error {
	user, err := a.requireUser(c)
	if user == nil || err != nil {
		return err
	}
	return c.Send(fmt.Sprintf("Ваш баланс безналичной кассы %d руб.", user.NonCashBalance))
}
