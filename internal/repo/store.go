package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cashbot/internal/domain"
)

// Flat delegates so Repo satisfies service.Store without callers reaching
// into the per-entity repositories.

func (r *Repo) UserByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	return r.Users.ByTelegramID(ctx, telegramID)
}

func (r *Repo) AllUsers(ctx context.Context) ([]domain.User, error) {
	return r.Users.All(ctx)
}

func (r *Repo) CreateUser(ctx context.Context, u *domain.User) error {
	return r.Users.Create(ctx, u)
}

func (r *Repo) CounterpartyByName(ctx context.Context, name string) (*domain.Counterparty, error) {
	return r.Counterparties.ByName(ctx, name)
}

func (r *Repo) UnpaidCash(ctx context.Context) ([]domain.UnpaidRequest, error) {
	return r.Requests.UnpaidCash(ctx)
}

func (r *Repo) UnpaidNonCash(ctx context.Context) ([]domain.UnpaidRequest, error) {
	return r.Requests.UnpaidNonCash(ctx)
}

func (r *Repo) SetCashPaid(ctx context.Context, id int64, proof string) error {
	return r.Requests.SetCashPaid(ctx, id, proof)
}

func (r *Repo) SetNonCashPaid(ctx context.Context, id int64, proof string) error {
	return r.Requests.SetNonCashPaid(ctx, id, proof)
}

// CashDetails returns one cash request joined with counterparty and owner,
// regardless of its paid status.
func (r *Repo) CashDetails(ctx context.Context, id int64) (*domain.UnpaidRequest, error) {
	var row domain.UnpaidRequest
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT r.id, r.amount, r.comment,
		        c.name AS counterparty_name, c.phone_or_card, c.bank,
		        '' AS invoice_path,
		        u.telegram_id AS owner_telegram_id
		 FROM cash_requests r
		 JOIN counterparties c ON c.id = r.counterparty_id
		 JOIN users u ON u.id = r.user_id
		 WHERE r.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("cash request details: %w", mapNotFound(err))
	}
	row.Kind = domain.KindCash
	return &row, nil
}

// NonCashDetails returns one non-cash request joined with counterparty and
// owner, regardless of its paid status.
func (r *Repo) NonCashDetails(ctx context.Context, id int64) (*domain.UnpaidRequest, error) {
	var row domain.UnpaidRequest
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT r.id, r.amount, r.comment,
		        c.name AS counterparty_name, c.phone_or_card, c.bank,
		        r.invoice_path,
		        u.telegram_id AS owner_telegram_id
		 FROM no_cash_request r
		 JOIN counterparties c ON c.id = r.counterparty_id
		 JOIN users u ON u.id = r.user_id
		 WHERE r.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("non-cash request details: %w", mapNotFound(err))
	}
	row.Kind = domain.KindNonCash
	return &row, nil
}
