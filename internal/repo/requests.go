package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cashbot/internal/domain"
)

// Requests persists cash and non-cash payment requests.
//
// Every write path that can flip status to paid re-checks the proof invariant
// before touching the database: a paid request without a proof reference must
// never be persisted. The schema carries matching CHECK constraints as a
// second line of defense.
type Requests struct {
	db *sqlx.DB
}

// NewRequests returns a request repository over the given handle.
func NewRequests(db *sqlx.DB) *Requests {
	return &Requests{db: db}
}

// Cash returns a cash request by id.
func (r *Requests) Cash(ctx context.Context, id int64) (*domain.CashRequest, error) {
	var req domain.CashRequest
	err := sqlx.GetContext(ctx, r.db, &req,
		`SELECT id, user_id, counterparty_id, amount, comment, status, check_file
		 FROM cash_requests WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("cash request: %w", mapNotFound(err))
	}
	return &req, nil
}

// NonCash returns a non-cash request by id.
func (r *Requests) NonCash(ctx context.Context, id int64) (*domain.NoCashRequest, error) {
	var req domain.NoCashRequest
	err := sqlx.GetContext(ctx, r.db, &req,
		`SELECT id, user_id, counterparty_id, amount, invoice_path, comment, status, payment_slip
		 FROM no_cash_request WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("non-cash request: %w", mapNotFound(err))
	}
	return &req, nil
}

// UnpaidCash returns all unpaid cash requests joined with counterparty and
// owner, ordered by id ascending so repeated listings stay stable.
func (r *Requests) UnpaidCash(ctx context.Context) ([]domain.UnpaidRequest, error) {
	var rows []domain.UnpaidRequest
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT r.id, r.amount, r.comment,
		        c.name AS counterparty_name, c.phone_or_card, c.bank,
		        '' AS invoice_path,
		        u.telegram_id AS owner_telegram_id
		 FROM cash_requests r
		 JOIN counterparties c ON c.id = r.counterparty_id
		 JOIN users u ON u.id = r.user_id
		 WHERE r.status = FALSE
		 ORDER BY r.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("unpaid cash requests: %w", err)
	}
	for i := range rows {
		rows[i].Kind = domain.KindCash
	}
	return rows, nil
}

// UnpaidNonCash returns all unpaid non-cash requests, same shape and ordering
// as UnpaidCash.
func (r *Requests) UnpaidNonCash(ctx context.Context) ([]domain.UnpaidRequest, error) {
	var rows []domain.UnpaidRequest
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT r.id, r.amount, r.comment,
		        c.name AS counterparty_name, c.phone_or_card, c.bank,
		        r.invoice_path,
		        u.telegram_id AS owner_telegram_id
		 FROM no_cash_request r
		 JOIN counterparties c ON c.id = r.counterparty_id
		 JOIN users u ON u.id = r.user_id
		 WHERE r.status = FALSE
		 ORDER BY r.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("unpaid non-cash requests: %w", err)
	}
	for i := range rows {
		rows[i].Kind = domain.KindNonCash
	}
	return rows, nil
}

// SetCashPaid flips a cash request to paid and attaches the check reference.
// An empty proof is rejected before any write happens.
func (r *Requests) SetCashPaid(ctx context.Context, id int64, proof string) error {
	if proof == "" {
		return domain.ErrProofRequired
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE cash_requests SET status = TRUE, check_file = $2 WHERE id = $1`,
		id, proof)
	if err != nil {
		return fmt.Errorf("pay cash request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetNonCashPaid flips a non-cash request to paid and attaches the payment slip.
func (r *Requests) SetNonCashPaid(ctx context.Context, id int64, proof string) error {
	if proof == "" {
		return domain.ErrProofRequired
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE no_cash_request SET status = TRUE, payment_slip = $2 WHERE id = $1`,
		id, proof)
	if err != nil {
		return fmt.Errorf("pay non-cash request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCash overwrites mutable fields of a cash request, enforcing the
// proof invariant on the new state.
func (r *Requests) UpdateCash(ctx context.Context, req *domain.CashRequest) error {
	if req.Status && req.CheckFile == "" {
		return domain.ErrProofRequired
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE cash_requests
		 SET amount = $2, comment = $3, status = $4, check_file = $5
		 WHERE id = $1`,
		req.ID, req.Amount, req.Comment, req.Status, req.CheckFile)
	if err != nil {
		return fmt.Errorf("update cash request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateNonCash overwrites mutable fields of a non-cash request, enforcing
// the proof invariant on the new state.
func (r *Requests) UpdateNonCash(ctx context.Context, req *domain.NoCashRequest) error {
	if req.Status && req.PaymentSlip == "" {
		return domain.ErrProofRequired
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE no_cash_request
		 SET amount = $2, invoice_path = $3, comment = $4, status = $5, payment_slip = $6
		 WHERE id = $1`,
		req.ID, req.Amount, req.InvoicePath, req.Comment, req.Status, req.PaymentSlip)
	if err != nil {
		return fmt.Errorf("update non-cash request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCash removes a cash request by id.
func (r *Requests) DeleteCash(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cash_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cash request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteNonCash removes a non-cash request by id.
func (r *Requests) DeleteNonCash(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM no_cash_request WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete non-cash request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func createCashRequest(ctx context.Context, q sqlx.ExtContext, req *domain.CashRequest) error {
	err := sqlx.GetContext(ctx, q, &req.ID,
		`INSERT INTO cash_requests (user_id, counterparty_id, amount, comment, status, check_file)
		 VALUES ($1, $2, $3, $4, FALSE, '')
		 RETURNING id`,
		req.UserID, req.CounterpartyID, req.Amount, req.Comment)
	if err != nil {
		return fmt.Errorf("create cash request: %w", err)
	}
	return nil
}

func createNoCashRequest(ctx context.Context, q sqlx.ExtContext, req *domain.NoCashRequest) error {
	if req.InvoicePath == "" {
		return domain.ErrInvoiceRequired
	}
	err := sqlx.GetContext(ctx, q, &req.ID,
		`INSERT INTO no_cash_request (user_id, counterparty_id, amount, invoice_path, comment, status, payment_slip)
		 VALUES ($1, $2, $3, $4, $5, FALSE, '')
		 RETURNING id`,
		req.UserID, req.CounterpartyID, req.Amount, req.InvoicePath, req.Comment)
	if err != nil {
		return fmt.Errorf("create non-cash request: %w", err)
	}
	return nil
}
