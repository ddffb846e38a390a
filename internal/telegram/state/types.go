// Package state provides the per-conversation FSM that drives the multi-step
// cash-desk dialogs. Sessions are in-memory only and do not survive restarts.
package state

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/domain"
)

// State identifies a finite-state-machine step in a conversation.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"

	// Registration dialog.
	StateAuthPassword       State = "auth_password"
	StateAuthCashBalance    State = "auth_cash_balance"
	StateAuthNonCashBalance State = "auth_non_cash_balance"

	// Request creation dialog.
	StateChoosingType         State = "request_choosing_type"
	StateEnteringContractor   State = "request_contractor"
	StateEnteringAmount       State = "request_amount"
	StateEnteringPhoneOrCard  State = "request_phone_or_card"
	StateEnteringBank         State = "request_bank"
	StateEnteringComment      State = "request_comment"
	StateUploadingInvoice     State = "request_invoice"
	StateAwaitingConfirmation State = "request_confirm"
	StateEditingField         State = "request_edit"

	// Payment dialog.
	StateAwaitingProof State = "pay_proof"
)

// Session stores the conversation state and the typed drafts being
// accumulated for one user. It is created on the first inbound event and
// cleared on any terminal transition.
type Session struct {
	State State

	// Draft is the request under construction, present during the request
	// creation dialog.
	Draft *domain.RequestDraft
	// Editing marks that a field-entry state was re-entered from the edit
	// menu; the flow rejoins confirmation right after the field is updated.
	Editing bool

	// Payment is set while the bot waits for a proof attachment.
	Payment *domain.PaymentTicket

	// Registration is set during the first-contact auth dialog.
	Registration *domain.RegistrationDraft
}

// Manager orchestrates user sessions and dispatches updates to the handler
// registered for the session's current state.
type Manager interface {
	Session(userID int64) *Session
	SetState(userID int64, st State)
	CurrentState(userID int64) State
	Clear(userID int64)

	InProgress(userID int64) bool
	Handle(c tele.Context) error
}
