package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cashbot/internal/domain"
)

// Users persists registered bot users.
type Users struct {
	db *sqlx.DB
}

// NewUsers returns a user repository over the given handle.
func NewUsers(db *sqlx.DB) *Users {
	return &Users{db: db}
}

// ByTelegramID looks a user up by the opaque transport identity.
func (r *Users) ByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u,
		`SELECT id, telegram_id, username, cash_balance, non_cash_balance
		 FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return nil, fmt.Errorf("user by telegram id: %w", mapNotFound(err))
	}
	return &u, nil
}

// All returns every registered user, ordered by id for determinism.
func (r *Users) All(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := sqlx.SelectContext(ctx, r.db, &users,
		`SELECT id, telegram_id, username, cash_balance, non_cash_balance
		 FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create inserts a user and fills in the generated id.
func (r *Users) Create(ctx context.Context, u *domain.User) error {
	err := sqlx.GetContext(ctx, r.db, &u.ID,
		`INSERT INTO users (telegram_id, username, cash_balance, non_cash_balance)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (telegram_id) DO NOTHING
		 RETURNING id`,
		u.TelegramID, u.Username, u.CashBalance, u.NonCashBalance)
	if err != nil {
		// No row returned means the telegram id was already taken.
		if mapNotFound(err) == domain.ErrNotFound {
			return domain.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateBalances overwrites both balances of an existing user.
func (r *Users) UpdateBalances(ctx context.Context, id, cash, nonCash int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET cash_balance = $2, non_cash_balance = $3 WHERE id = $1`,
		id, cash, nonCash)
	if err != nil {
		return fmt.Errorf("update balances: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a user by id.
func (r *Users) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
