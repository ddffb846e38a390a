package bot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/domain"
	"github.com/m3rciful/cashbot/internal/telegram/keyboard"
	"github.com/m3rciful/cashbot/internal/telegram/state"
)

// formatSummary renders the draft the way it is shown for confirmation and
// in the fan-out notification.
func formatSummary(d *domain.RequestDraft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Имя контрагента: %s\n", d.CounterpartyName)
	fmt.Fprintf(&b, "Комментарий: %s\n", d.Comment)
	fmt.Fprintf(&b, "Сумма: %d", d.Amount)
	if d.Kind == domain.KindNonCash {
		invoice := d.InvoicePath
		if invoice == "" {
			invoice = "Не загружен"
		}
		fmt.Fprintf(&b, "\nСчет: %s", invoice)
	} else {
		fmt.Fprintf(&b, "\nТелефон/Карта: %s\n", orUnset(d.PhoneOrCard))
		fmt.Fprintf(&b, "Банк: %s", orUnset(d.Bank))
	}
	return b.String()
}

func orUnset(s string) string {
	if s == "" {
		return "Не указано"
	}
	return s
}

// showSummary presents the draft and the Да/Нет/Изменить choice, moving the
// conversation to confirmation.
func (a *App) showSummary(c tele.Context, d *domain.RequestDraft) error {
	if err := c.Send("Заявка:\n\n" + formatSummary(d)); err != nil {
		return err
	}
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Да", Unique: cbConfirmYes},
		{Text: "Нет", Unique: cbConfirmNo},
		{Text: "Изменить", Unique: cbConfirmEdit},
	})
	a.fsm.SetState(c.Sender().ID, state.StateAwaitingConfirmation)
	return c.Send("Подтвердите заявку:", markup)
}
