package bot

import (
	"errors"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/domain"
	"github.com/m3rciful/cashbot/internal/telegram/keyboard"
	"github.com/m3rciful/cashbot/internal/telegram/state"
	"github.com/m3rciful/cashbot/internal/telegram/tgctx"
)

// Invoice uploads are restricted to PDF and Excel.
var invoiceMIMETypes = map[string]struct{}{
	"application/pdf":          {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
}

// onCreateRequest starts the request creation dialog.
func (a *App) onCreateRequest(c tele.Context) error {
	user, err := a.requireUser(c)
	if user == nil || err != nil {
		return err
	}

	sess := a.fsm.Session(c.Sender().ID)
	sess.Draft = &domain.RequestDraft{}
	sess.Editing = false
	a.fsm.SetState(c.Sender().ID, state.StateChoosingType)
	return c.Send("Выберите тип заявки:", keyboard.ReplyButtons(
		[]string{btnKindCash},
		[]string{btnKindNonCash},
	))
}

func (a *App) onChooseType(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		sess.Draft = &domain.RequestDraft{}
	}

	switch c.Text() {
	case btnKindCash:
		sess.Draft.Kind = domain.KindCash
	case btnKindNonCash:
		sess.Draft.Kind = domain.KindNonCash
	default:
		return c.Send("Пожалуйста, выберите один из предложенных вариантов.")
	}

	a.fsm.SetState(c.Sender().ID, state.StateEnteringContractor)
	return c.Send("Введите имя контрагента:", keyboard.RemoveKeyboard())
}

// onContractorName records the payee name and prefills payment details when
// the counterparty is already known.
func (a *App) onContractorName(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		return a.restartCreation(c)
	}
	name := c.Text()
	if name == "" {
		return c.Send("Введите имя контрагента:")
	}
	sess.Draft.CounterpartyName = name
	sess.Draft.CounterpartyID = 0

	cp, err := a.svc.FindCounterparty(tgctx.Build(c), name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if cp != nil {
		sess.Draft.CounterpartyID = cp.ID
		if cp.PhoneOrCard != nil {
			sess.Draft.PhoneOrCard = *cp.PhoneOrCard
		}
		if cp.Bank != nil {
			sess.Draft.Bank = *cp.Bank
		}
	}

	if sess.Editing {
		sess.Editing = false
		if err := c.Send("Имя контрагента обновлено."); err != nil {
			return err
		}
		return a.showSummary(c, sess.Draft)
	}

	a.fsm.SetState(c.Sender().ID, state.StateEnteringAmount)
	return c.Send("Введите сумму для оплаты контрагенту:")
}

func (a *App) onAmount(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		return a.restartCreation(c)
	}

	amount, err := strconv.ParseInt(c.Text(), 10, 64)
	if err != nil || amount <= 0 {
		return c.Send("Пожалуйста, введите сумму целым положительным числом:")
	}
	sess.Draft.Amount = amount

	if sess.Editing {
		sess.Editing = false
		if err := c.Send("Сумма обновлена."); err != nil {
			return err
		}
		return a.showSummary(c, sess.Draft)
	}

	// Cash payments to an unknown counterparty need payment details first.
	if sess.Draft.Kind == domain.KindCash && sess.Draft.CounterpartyID == 0 {
		a.fsm.SetState(c.Sender().ID, state.StateEnteringPhoneOrCard)
		return c.Send("Введите номер телефона или номер банковской карты:")
	}
	a.fsm.SetState(c.Sender().ID, state.StateEnteringComment)
	return c.Send("Введите комментарий:")
}

func (a *App) onPhoneOrCard(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		return a.restartCreation(c)
	}
	sess.Draft.PhoneOrCard = c.Text()

	if sess.Editing {
		sess.Editing = false
		if err := c.Send("Номер телефона или номер банковской карты обновлен."); err != nil {
			return err
		}
		return a.showSummary(c, sess.Draft)
	}

	a.fsm.SetState(c.Sender().ID, state.StateEnteringBank)
	return c.Send("Введите наименование банка:")
}

func (a *App) onBank(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		return a.restartCreation(c)
	}
	sess.Draft.Bank = c.Text()

	if sess.Editing {
		sess.Editing = false
		if err := c.Send("Наименование банка обновлено."); err != nil {
			return err
		}
		return a.showSummary(c, sess.Draft)
	}

	a.fsm.SetState(c.Sender().ID, state.StateEnteringComment)
	return c.Send("Введите дополнительный комментарий:")
}

func (a *App) onComment(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		return a.restartCreation(c)
	}
	sess.Draft.Comment = c.Text()

	if sess.Editing {
		sess.Editing = false
		if err := c.Send("Комментарий обновлен."); err != nil {
			return err
		}
		return a.showSummary(c, sess.Draft)
	}

	if sess.Draft.Kind == domain.KindNonCash {
		a.fsm.SetState(c.Sender().ID, state.StateUploadingInvoice)
		return c.Send("Загрузите счет на оплату (PDF или Excel):")
	}
	return a.showSummary(c, sess.Draft)
}

// onInvoice accepts only a PDF or Excel document and stores it locally.
// Anything else re-prompts without a state change.
func (a *App) onInvoice(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		return a.restartCreation(c)
	}

	doc := c.Message().Document
	if doc == nil {
		return c.Send("Пожалуйста, загрузите счет на оплату (PDF или Excel).")
	}
	if _, ok := invoiceMIMETypes[doc.MIME]; !ok {
		return c.Send("Пожалуйста, загрузите файл в формате PDF или Excel.")
	}

	path, err := a.files.SaveInvoice(doc)
	if err != nil {
		return err
	}
	sess.Draft.InvoicePath = path
	return a.showSummary(c, sess.Draft)
}

// onConfirmationText nudges the user to the inline buttons if they keep
// typing while a confirmation is pending.
func (a *App) onConfirmationText(c tele.Context) error {
	return c.Send("Пожалуйста, подтвердите заявку кнопками выше.")
}

func (a *App) restartCreation(c tele.Context) error {
	a.fsm.Clear(c.Sender().ID)
	return c.Send("Черновик заявки утерян. Начните заново: «Создать заявку».")
}
