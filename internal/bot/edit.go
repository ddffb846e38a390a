package bot

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/domain"
	"github.com/m3rciful/cashbot/internal/telegram/callbacks"
	"github.com/m3rciful/cashbot/internal/telegram/keyboard"
	"github.com/m3rciful/cashbot/internal/telegram/state"
	"github.com/m3rciful/cashbot/internal/telegram/tgctx"
)

// Editable field keys carried in the edit_field callback payload.
const (
	fieldContractor = "contractor"
	fieldAmount     = "amount"
	fieldPhone      = "phone"
	fieldBank       = "bank"
	fieldComment    = "comment"
)

// onConfirmYes commits the draft and fans out the notification.
func (a *App) onConfirmYes(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		return a.restartCreation(c)
	}
	draft := sess.Draft

	ctx := tgctx.Build(c)
	_, err := a.svc.CreateRequest(ctx, senderID(c), draft)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fsm.Clear(c.Sender().ID)
			return c.Send("Пользователь не найден.")
		}
		return err
	}

	summary := formatSummary(draft)
	a.fsm.Clear(c.Sender().ID)
	if err := c.Send("Заявка отправлена:\n\n"+summary, mainMenu()); err != nil {
		return err
	}
	a.notifyAll(ctx, "Новая заявка создана:\n\n"+summary)
	return nil
}

// onConfirmNo drops the draft without persisting anything.
func (a *App) onConfirmNo(c tele.Context) error {
	a.fsm.Clear(c.Sender().ID)
	return c.Send("Заявка отменена.", mainMenu())
}

// onConfirmEdit presents the field menu. Phone and bank only apply to cash
// requests.
func (a *App) onConfirmEdit(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		return a.restartCreation(c)
	}

	buttons := []keyboard.InlineBtn{
		{Text: "Имя контрагента", Unique: cbEditField, Data: fieldContractor},
		{Text: "Сумма", Unique: cbEditField, Data: fieldAmount},
	}
	if sess.Draft.Kind == domain.KindCash {
		buttons = append(buttons,
			keyboard.InlineBtn{Text: "Телефон/Карта", Unique: cbEditField, Data: fieldPhone},
			keyboard.InlineBtn{Text: "Банк", Unique: cbEditField, Data: fieldBank},
		)
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "Комментарий", Unique: cbEditField, Data: fieldComment})

	a.fsm.SetState(c.Sender().ID, state.StateEditingField)
	return c.Send("Что вы хотите изменить? Выберите одно из следующих:", keyboard.InlineButtons(buttons))
}

// onEditField jumps into the chosen field's entry state; the flow rejoins at
// confirmation right after the field handler runs.
func (a *App) onEditField(c tele.Context) error {
	sess := a.fsm.Session(c.Sender().ID)
	if sess.Draft == nil {
		return a.restartCreation(c)
	}

	var (
		next   state.State
		prompt string
	)
	switch callbacks.CallbackPayload(c) {
	case fieldContractor:
		next, prompt = state.StateEnteringContractor, "Введите новое имя контрагента:"
	case fieldAmount:
		next, prompt = state.StateEnteringAmount, "Введите новую сумму:"
	case fieldPhone:
		next, prompt = state.StateEnteringPhoneOrCard, "Введите новый номер телефона или номер банковской карты:"
	case fieldBank:
		next, prompt = state.StateEnteringBank, "Введите новое наименование банка:"
	case fieldComment:
		next, prompt = state.StateEnteringComment, "Введите новый комментарий:"
	default:
		a.fsm.SetState(c.Sender().ID, state.StateEditingField)
		return c.Send("Неверный выбор. Пожалуйста, выберите предложенные поля.")
	}

	sess.Editing = true
	a.fsm.SetState(c.Sender().ID, next)
	return c.Send(prompt)
}

// onEditingFieldText keeps the user on the field menu until a button is used.
func (a *App) onEditingFieldText(c tele.Context) error {
	return c.Send("Пожалуйста, выберите поле для изменения кнопками выше.")
}
