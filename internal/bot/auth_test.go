package bot

import (
	"context"
	"testing"

	"github.com/m3rciful/cashbot/internal/domain"
	"github.com/m3rciful/cashbot/internal/telegram/state"
)

func TestRegistrationFlow(t *testing.T) {
	h := newHarness(t)

	c := h.text("/start")
	if got := lastReply(t, c).text; got != "Вас приветствует кассовый помощник. Для продолжения, пожалуйста, введите пароль:" {
		t.Fatalf("reply = %q", got)
	}
	h.stateIs(state.StateAuthPassword)

	c = h.text("wrong")
	if got := lastReply(t, c).text; got != "Неверный пароль. Попробуйте снова:" {
		t.Fatalf("reply = %q", got)
	}
	h.stateIs(state.StateAuthPassword)

	c = h.text(testPassword)
	if got := lastReply(t, c).text; got != "Введите начальный баланс в кассе (наличные):" {
		t.Fatalf("reply = %q", got)
	}
	h.stateIs(state.StateAuthCashBalance)

	c = h.text("пять тысяч")
	if got := lastReply(t, c).text; got != "Пожалуйста, введите корректное число для начального баланса в кассе (наличные):" {
		t.Fatalf("reply = %q", got)
	}
	h.stateIs(state.StateAuthCashBalance)

	h.text("5000")
	h.stateIs(state.StateAuthNonCashBalance)

	c = h.text("10000")
	if got := lastReply(t, c).text; got != "Пользователь создан. Выберите действие:" {
		t.Fatalf("reply = %q", got)
	}
	h.stateIs(state.StateIdle)

	u, err := h.store.UserByTelegramID(context.Background(), "100")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if u.CashBalance != 5000 || u.NonCashBalance != 10000 || u.Username != "alice" {
		t.Fatalf("stored user = %+v", u)
	}
}

func TestStartKnownUser(t *testing.T) {
	h := newHarness(t)
	h.store.addUser("100", 0, 0)

	c := h.text("/start")
	r := lastReply(t, c)
	if r.text != "Добро пожаловать обратно! Выберите действие:" {
		t.Fatalf("reply = %q", r.text)
	}
	if r.markup == nil || len(r.markup.ReplyKeyboard) != 3 {
		t.Fatalf("main menu markup = %+v", r.markup)
	}
	h.stateIs(state.StateIdle)
}

func TestStartAbandonsConversation(t *testing.T) {
	h := newHarness(t)
	h.store.addUser("100", 0, 0)

	h.text(btnCreate)
	h.stateIs(state.StateChoosingType)

	h.text("/start")
	h.stateIs(state.StateIdle)
}

func TestCancelClearsConversation(t *testing.T) {
	h := newHarness(t)
	h.store.addUser("100", 0, 0)

	h.text(btnCreate)
	h.text(btnKindCash)
	h.stateIs(state.StateEnteringContractor)

	c := h.text("/cancel")
	if got := lastReply(t, c).text; got != "Действие отменено." {
		t.Fatalf("reply = %q", got)
	}
	h.stateIs(state.StateIdle)
}

func TestRegisterTwice(t *testing.T) {
	h := newHarness(t)
	h.store.addUser("100", 1, 2)

	// Force the registration dialog for an already stored identity.
	sess := h.fsm.Session(h.user.ID)
	sess.Registration = &domain.RegistrationDraft{TelegramID: "100", Username: "alice", CashBalance: 5}
	h.fsm.SetState(h.user.ID, state.StateAuthNonCashBalance)

	c := h.text("6")
	if got := lastReply(t, c).text; got != "Пользователь уже зарегистрирован. Выберите действие:" {
		t.Fatalf("reply = %q", got)
	}
	h.stateIs(state.StateIdle)
}

func TestBalances(t *testing.T) {
	h := newHarness(t)
	h.store.addUser("100", 5000, 12000)

	c := h.text(btnBalance)
	if got := lastReply(t, c).text; got != "Выберите кассу:" {
		t.Fatalf("reply = %q", got)
	}

	c = h.text(btnCashDesk)
	if got := lastReply(t, c).text; got != "Ваш баланс наличной кассы 5000 руб." {
		t.Fatalf("reply = %q", got)
	}

	c = h.text(btnNonCashDesk)
	if got := lastReply(t, c).text; got != "Ваш баланс безналичной кассы 12000 руб." {
		t.Fatalf("reply = %q", got)
	}
}
