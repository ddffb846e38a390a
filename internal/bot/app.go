// Package bot implements the cash-desk dialogs: registration, request
// creation and editing, listing with pagination, payment and balances.
package bot

import (
	"context"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/logger"
	"github.com/m3rciful/cashbot/internal/service"
	"github.com/m3rciful/cashbot/internal/telegram"
	"github.com/m3rciful/cashbot/internal/telegram/keyboard"
	"github.com/m3rciful/cashbot/internal/telegram/sender"
	"github.com/m3rciful/cashbot/internal/telegram/state"
)

// Main menu and flow reply-keyboard labels.
const (
	btnCreate      = "Создать заявку"
	btnShowUnpaid  = "Посмотреть текущие не оплаченные заявки"
	btnBalance     = "Проверить баланс"
	btnListCash    = "Наличные заявки"
	btnListNonCash = "Безналичные заявки"
	btnCashDesk    = "Наличная касса"
	btnNonCashDesk = "Безналичная касса"
	btnKindCash    = "Наличная заявка"
	btnKindNonCash = "Безналичная заявка"
)

// Callback unique keys.
const (
	cbConfirmYes  = "confirm_yes"
	cbConfirmNo   = "confirm_no"
	cbConfirmEdit = "confirm_edit"
	cbEditField   = "edit_field"
	cbPayCash     = "pay_cash"
	cbPayNonCash  = "pay_noncash"
	cbCashPage    = "cash_page"
	cbNonCashPage = "noncash_page"
)

// TextSender is the outbound surface used for the notification fan-out.
// *tele.Bot implements it.
type TextSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// App binds the conversation handlers to the service layer, the FSM and the
// transport.
type App struct {
	out        TextSender
	svc        *service.Service
	fsm        state.Manager
	files      FileStore
	reg        *telegram.Registry
	dispatcher *sender.Dispatcher
	password   string
}

// New assembles the application. The registry is populated by Wire.
func New(out TextSender, svc *service.Service, fsm state.Manager, files FileStore, reg *telegram.Registry, dispatcher *sender.Dispatcher, password string) *App {
	return &App{
		out:        out,
		svc:        svc,
		fsm:        fsm,
		files:      files,
		reg:        reg,
		dispatcher: dispatcher,
		password:   password,
	}
}

// Wire registers all commands, reply-keyboard labels, callbacks and FSM state
// handlers, and returns the transport routes.
func (a *App) Wire() []telegram.Route {
	a.reg.RegisterCommand("/start", telegram.Command{
		Handler:     a.onStart,
		Description: "Начало работы",
	})
	a.reg.RegisterCommand("/cancel", telegram.Command{
		Handler:     a.onCancel,
		Description: "Отменить текущее действие",
	})

	a.reg.RegisterText(btnCreate, a.onCreateRequest)
	a.reg.RegisterText(btnShowUnpaid, a.onShowUnpaid)
	a.reg.RegisterText(btnListCash, a.onListCash)
	a.reg.RegisterText(btnListNonCash, a.onListNonCash)
	a.reg.RegisterText(btnBalance, a.onBalanceMenu)
	a.reg.RegisterText(btnCashDesk, a.onCashBalance)
	a.reg.RegisterText(btnNonCashDesk, a.onNonCashBalance)

	mustRegisterCallback(a.reg, cbConfirmYes, a.onConfirmYes)
	mustRegisterCallback(a.reg, cbConfirmNo, a.onConfirmNo)
	mustRegisterCallback(a.reg, cbConfirmEdit, a.onConfirmEdit)
	mustRegisterCallback(a.reg, cbEditField, a.onEditField)
	mustRegisterCallback(a.reg, cbPayCash, a.onPayCash)
	mustRegisterCallback(a.reg, cbPayNonCash, a.onPayNonCash)
	mustRegisterCallback(a.reg, cbCashPage, a.onCashPage)
	mustRegisterCallback(a.reg, cbNonCashPage, a.onNonCashPage)

	state.RegisterHandler(a.fsm, state.StateAuthPassword, a.onAuthPassword)
	state.RegisterHandler(a.fsm, state.StateAuthCashBalance, a.onAuthCashBalance)
	state.RegisterHandler(a.fsm, state.StateAuthNonCashBalance, a.onAuthNonCashBalance)

	state.RegisterHandler(a.fsm, state.StateChoosingType, a.onChooseType)
	state.RegisterHandler(a.fsm, state.StateEnteringContractor, a.onContractorName)
	state.RegisterHandler(a.fsm, state.StateEnteringAmount, a.onAmount)
	state.RegisterHandler(a.fsm, state.StateEnteringPhoneOrCard, a.onPhoneOrCard)
	state.RegisterHandler(a.fsm, state.StateEnteringBank, a.onBank)
	state.RegisterHandler(a.fsm, state.StateEnteringComment, a.onComment)
	state.RegisterHandler(a.fsm, state.StateUploadingInvoice, a.onInvoice)
	state.RegisterHandler(a.fsm, state.StateAwaitingConfirmation, a.onConfirmationText)
	state.RegisterHandler(a.fsm, state.StateEditingField, a.onEditingFieldText)

	state.RegisterHandler(a.fsm, state.StateAwaitingProof, a.onProof)

	return telegram.BuildRoutes(a.fsm, a.reg, telegram.RouteOptions{})
}

// mainMenu is shown to registered users after /start and registration.
func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnCreate},
		[]string{btnShowUnpaid},
		[]string{btnBalance},
	)
}

// notifyAll fans the text out to every registered user through the async
// dispatcher so one slow recipient cannot stall the handler.
func (a *App) notifyAll(ctx context.Context, text string) {
	a.svc.NotifyAll(ctx, func(telegramID, msg string) error {
		id, err := strconv.ParseInt(telegramID, 10, 64)
		if err != nil {
			return err
		}
		return a.dispatcher.Enqueue(ctx, "notify", func() error {
			_, err := a.out.Send(&tele.User{ID: id}, msg)
			return err
		})
	}, text)
}

func mustRegisterCallback(reg *telegram.Registry, key string, h tele.HandlerFunc) {
	if err := reg.RegisterCallback(key, h); err != nil {
		logger.TWire.Error("callback registration failed",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
	}
}

func senderID(c tele.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}
