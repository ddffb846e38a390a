package state

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewMemoryManager()

	if m.InProgress(1) {
		t.Fatal("fresh user should be idle")
	}
	if got := m.CurrentState(1); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}

	m.SetState(1, StateChoosingType)
	if !m.InProgress(1) {
		t.Fatal("user should be in progress")
	}
	if got := m.CurrentState(1); got != StateChoosingType {
		t.Fatalf("state = %q, want %q", got, StateChoosingType)
	}

	// Sessions are per user.
	if m.InProgress(2) {
		t.Fatal("other user should be idle")
	}

	m.Clear(1)
	if m.InProgress(1) {
		t.Fatal("cleared user should be idle")
	}
}

func TestSessionDraftSurvivesStateChanges(t *testing.T) {
	m := NewMemoryManager()

	sess := m.Session(7)
	sess.Draft = &domain.RequestDraft{Kind: domain.KindCash, CounterpartyName: "ООО Ромашка"}
	m.SetState(7, StateEnteringAmount)

	again := m.Session(7)
	if again.Draft == nil || again.Draft.CounterpartyName != "ООО Ромашка" {
		t.Fatalf("draft lost across state change: %+v", again.Draft)
	}
	if again.State != StateEnteringAmount {
		t.Fatalf("state = %q, want %q", again.State, StateEnteringAmount)
	}
}

func TestHandleDispatchesByState(t *testing.T) {
	m := NewMemoryManager()

	var called []State
	RegisterHandler(m, StateEnteringAmount, func(c tele.Context) error {
		called = append(called, StateEnteringAmount)
		return nil
	})
	RegisterHandler(m, StateEnteringComment, func(c tele.Context) error {
		called = append(called, StateEnteringComment)
		return nil
	})

	m.SetState(5, StateEnteringAmount)
	if err := m.Handle(fakeCtx{userID: 5}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	m.SetState(5, StateEnteringComment)
	if err := m.Handle(fakeCtx{userID: 5}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// Unregistered state is a no-op.
	m.SetState(5, StateUploadingInvoice)
	if err := m.Handle(fakeCtx{userID: 5}); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(called) != 2 || called[0] != StateEnteringAmount || called[1] != StateEnteringComment {
		t.Fatalf("dispatch order wrong: %v", called)
	}
}

// fakeCtx implements the single Context method the manager touches.
type fakeCtx struct {
	tele.Context
	userID int64
}

func (f fakeCtx) Sender() *tele.User { return &tele.User{ID: f.userID} }
