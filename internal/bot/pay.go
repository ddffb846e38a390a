package bot

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/domain"
	"github.com/m3rciful/cashbot/internal/telegram/callbacks"
	"github.com/m3rciful/cashbot/internal/telegram/state"
	"github.com/m3rciful/cashbot/internal/telegram/tgctx"
)

func (a *App) onPayCash(c tele.Context) error {
	return a.startPayment(c, domain.KindCash)
}

func (a *App) onPayNonCash(c tele.Context) error {
	return a.startPayment(c, domain.KindNonCash)
}

// startPayment shows the payment details, remembers the chosen request in
// the session and waits for a proof attachment.
func (a *App) startPayment(c tele.Context, kind domain.RequestKind) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Некорректная заявка"})
	}

	r, err := a.svc.RequestDetails(tgctx.Build(c), kind, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Send("Заявка не найдена. Обновите список заявок.")
		}
		return err
	}

	if err := c.Send(paymentDetails(r)); err != nil {
		return err
	}
	if kind == domain.KindNonCash {
		if err := a.sendInvoice(c, r.InvoicePath); err != nil {
			return err
		}
	}

	sess := a.fsm.Session(c.Sender().ID)
	sess.Payment = &domain.PaymentTicket{RequestID: id, Kind: kind}
	a.fsm.SetState(c.Sender().ID, state.StateAwaitingProof)
	return nil
}

func paymentDetails(r *domain.UnpaidRequest) string {
	var b strings.Builder
	if r.Kind == domain.KindNonCash {
		fmt.Fprintf(&b, "Вы выбрали оплатить безналичную заявку:\n")
		fmt.Fprintf(&b, "Контрагент: %s\n", r.CounterpartyName)
		fmt.Fprintf(&b, "Сумма: %d\n", r.Amount)
	} else {
		fmt.Fprintf(&b, "Вы выбрали оплатить наличную заявку:\n")
		fmt.Fprintf(&b, "Контрагент: %s\n", r.CounterpartyName)
		fmt.Fprintf(&b, "Сумма: %d\n", r.Amount)
		fmt.Fprintf(&b, "Реквизиты для оплаты:\n%s\n%s\n", deref(r.Bank), deref(r.PhoneOrCard))
	}
	b.WriteString("Пожалуйста, отправьте чек для подтверждения оплаты.")
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (a *App) sendInvoice(c tele.Context, path string) error {
	if path == "" {
		return c.Send("Счет на оплату не был добавлен или нет доступа к нему!")
	}
	if _, err := os.Stat(path); err != nil {
		return c.Send("Счет на оплату не был добавлен или нет доступа к нему!")
	}
	return c.Send(&tele.Document{
		File:    tele.FromDisk(path),
		Caption: "Счет на оплату",
	})
}

// onProof accepts a photo or document, stores it and flips the request to
// paid with the attachment's file id as the proof reference.
func (a *App) onProof(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Payment == nil {
		a.fsm.Clear(c.Sender().ID)
		return c.Send("Оплата не выбрана. Откройте список заявок заново.")
	}

	msg := c.Message()
	if msg == nil || (msg.Photo == nil && msg.Document == nil) {
		return c.Send("Пожалуйста, отправьте фото чека или документ.")
	}

	proof, err := a.files.SaveProof(msg)
	if err != nil {
		return err
	}

	ticket := sess.Payment
	if err := a.svc.Pay(tgctx.Build(c), ticket.Kind, ticket.RequestID, proof); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fsm.Clear(c.Sender().ID)
			return c.Send("Заявка не найдена. Обновите список заявок.")
		}
		return err
	}

	a.fsm.Clear(c.Sender().ID)
	return c.Send("Чек/платежное поручение получено. Заявка успешно оплачена.")
}
