// Package repo implements the entity store on top of PostgreSQL via sqlx.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cashbot/internal/domain"
)

// Repo aggregates per-entity repositories sharing one connection pool.
type Repo struct {
	db *sqlx.DB

	Users          *Users
	Counterparties *Counterparties
	Requests       *Requests
}

// New builds the repository set over an open database handle.
func New(db *sqlx.DB) *Repo {
	return &Repo{
		db:             db,
		Users:          NewUsers(db),
		Counterparties: NewCounterparties(db),
		Requests:       NewRequests(db),
	}
}

// InTx runs fn inside a transaction, rolling back on error or panic.
func (r *Repo) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CreateRequest resolves or creates the counterparty and inserts the request
// in a single transaction, so a failed insert never leaves a dangling
// counterparty behind.
func (r *Repo) CreateRequest(ctx context.Context, userID int64, d *domain.RequestDraft) (int64, error) {
	var requestID int64
	err := r.InTx(ctx, func(tx *sqlx.Tx) error {
		cp, err := r.Counterparties.resolve(ctx, tx, d)
		if err != nil {
			return err
		}
		switch d.Kind {
		case domain.KindNonCash:
			req := &domain.NoCashRequest{
				UserID:         userID,
				CounterpartyID: cp.ID,
				Amount:         d.Amount,
				InvoicePath:    d.InvoicePath,
				Comment:        d.Comment,
			}
			if err := createNoCashRequest(ctx, tx, req); err != nil {
				return err
			}
			requestID = req.ID
		default:
			req := &domain.CashRequest{
				UserID:         userID,
				CounterpartyID: cp.ID,
				Amount:         d.Amount,
				Comment:        d.Comment,
			}
			if err := createCashRequest(ctx, tx, req); err != nil {
				return err
			}
			requestID = req.ID
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return requestID, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
