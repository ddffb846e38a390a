package domain

// RequestKind distinguishes the two payment request tables.
type RequestKind string

const (
	KindCash    RequestKind = "cash"
	KindNonCash RequestKind = "noncash"
)

// User is a registered bot user. Balances are set once at registration
// and are never recalculated by any flow.
type User struct {
	ID             int64  `db:"id"`
	TelegramID     string `db:"telegram_id"`
	Username       string `db:"username"`
	CashBalance    int64  `db:"cash_balance"`
	NonCashBalance int64  `db:"non_cash_balance"`
}

// Counterparty is a payee looked up by exact name when a request is created.
type Counterparty struct {
	ID           int64   `db:"id"`
	Name         string  `db:"name"`
	PhoneOrCard  *string `db:"phone_or_card"`
	Bank         *string `db:"bank"`
	IsIndividual bool    `db:"is_individual"`
}

// CashRequest is a request to pay a counterparty in cash.
// Invariant: Status == true requires a non-empty CheckFile.
type CashRequest struct {
	ID             int64  `db:"id"`
	UserID         int64  `db:"user_id"`
	CounterpartyID int64  `db:"counterparty_id"`
	Amount         int64  `db:"amount"`
	Comment        string `db:"comment"`
	Status         bool   `db:"status"`
	CheckFile      string `db:"check_file"`
}

// NoCashRequest is a request paid by bank transfer against an uploaded invoice.
// Invariant: Status == true requires a non-empty PaymentSlip.
type NoCashRequest struct {
	ID             int64  `db:"id"`
	UserID         int64  `db:"user_id"`
	CounterpartyID int64  `db:"counterparty_id"`
	Amount         int64  `db:"amount"`
	InvoicePath    string `db:"invoice_path"`
	Comment        string `db:"comment"`
	Status         bool   `db:"status"`
	PaymentSlip    string `db:"payment_slip"`
}

// UnpaidRequest is a listing row joined with its counterparty and owner.
type UnpaidRequest struct {
	ID               int64       `db:"id"`
	Kind             RequestKind `db:"-"`
	Amount           int64       `db:"amount"`
	Comment          string      `db:"comment"`
	CounterpartyName string      `db:"counterparty_name"`
	PhoneOrCard      *string     `db:"phone_or_card"`
	Bank             *string     `db:"bank"`
	InvoicePath      string      `db:"invoice_path"`
	OwnerTelegramID  string      `db:"owner_telegram_id"`
}

// RequestDraft accumulates fields during the request creation conversation.
// It lives only in the in-memory session and is persisted on confirmation.
type RequestDraft struct {
	Kind             RequestKind
	CounterpartyID   int64 // 0 when the counterparty is new
	CounterpartyName string
	Amount           int64
	PhoneOrCard      string
	Bank             string
	Comment          string
	InvoicePath      string
}

// PaymentTicket remembers which request the user chose to pay while the bot
// waits for the proof attachment.
type PaymentTicket struct {
	RequestID int64
	Kind      RequestKind
}

// RegistrationDraft accumulates answers of the first-contact auth dialog.
type RegistrationDraft struct {
	TelegramID  string
	Username    string
	CashBalance int64
}
