package bot

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/domain"
	"github.com/m3rciful/cashbot/internal/service"
	"github.com/m3rciful/cashbot/internal/telegram/callbacks"
	"github.com/m3rciful/cashbot/internal/telegram/keyboard"
	"github.com/m3rciful/cashbot/internal/telegram/tgctx"
)

func (a *App) onShowUnpaid(c tele.Context) error {
	return c.Send("Выберите тип заявки:", keyboard.ReplyButtons(
		[]string{btnListCash},
		[]string{btnListNonCash},
	))
}

func (a *App) onListCash(c tele.Context) error {
	return a.showUnpaidPage(c, domain.KindCash, 0)
}

func (a *App) onListNonCash(c tele.Context) error {
	return a.showUnpaidPage(c, domain.KindNonCash, 0)
}

func (a *App) onCashPage(c tele.Context) error {
	page, err := callbacks.PayloadInt(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Некорректная страница"})
	}
	return a.showUnpaidPage(c, domain.KindCash, page)
}

func (a *App) onNonCashPage(c tele.Context) error {
	page, err := callbacks.PayloadInt(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Некорректная страница"})
	}
	return a.showUnpaidPage(c, domain.KindNonCash, page)
}

// showUnpaidPage renders one page of unpaid requests, one message per
// request, followed by a navigation message when further pages exist. The
// page index travels in the navigation callback payload, so paging carries
// no session state.
func (a *App) showUnpaidPage(c tele.Context, kind domain.RequestKind, page int) error {
	requests, err := a.svc.Unpaid(tgctx.Build(c), kind)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return c.Send("Нет текущих неоплаченных заявок.")
	}

	payKey := cbPayCash
	navKey := cbCashPage
	if kind == domain.KindNonCash {
		payKey = cbPayNonCash
		navKey = cbNonCashPage
	}

	viewer := senderID(c)
	for _, r := range service.PageSlice(requests, page, service.PageSize) {
		rows := [][]keyboard.InlineBtn{
			{{Text: "Оплатить", Unique: payKey, Data: strconv.FormatInt(r.ID, 10)}},
		}
		if r.OwnerTelegramID == viewer {
			// The owner's change control enters the same payment flow,
			// matching the historical behaviour of the listing.
			rows = append(rows, []keyboard.InlineBtn{
				{Text: "Изменить", Unique: payKey, Data: strconv.FormatInt(r.ID, 10)},
			})
		}
		if err := c.Send(formatUnpaid(&r), keyboard.InlineButtonsRows(rows...)); err != nil {
			return err
		}
	}

	var nav []keyboard.InlineBtn
	if service.HasPrev(page) {
		nav = append(nav, keyboard.InlineBtn{Text: "Назад", Unique: navKey, Data: strconv.Itoa(page - 1)})
	}
	if service.HasNext(len(requests), page, service.PageSize) {
		nav = append(nav, keyboard.InlineBtn{Text: "Вперед", Unique: navKey, Data: strconv.Itoa(page + 1)})
	}
	if len(nav) == 0 {
		return nil
	}
	return c.Send("Навигация по страницам:", keyboard.InlineButtonsRows(nav))
}

func formatUnpaid(r *domain.UnpaidRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Контрагент: %s\n", r.CounterpartyName)
	fmt.Fprintf(&b, "Сумма: %d\n", r.Amount)
	fmt.Fprintf(&b, "Комментарий: %s", r.Comment)
	if r.Kind == domain.KindNonCash {
		fmt.Fprintf(&b, "\nСчет на оплату: %s", r.InvoicePath)
	}
	return b.String()
}
