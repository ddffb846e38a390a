package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cashbot/internal/domain"
)

// Counterparties persists payees. Names are unique; request creation reuses
// an existing row when the name matches exactly.
type Counterparties struct {
	db *sqlx.DB
}

// NewCounterparties returns a counterparty repository over the given handle.
func NewCounterparties(db *sqlx.DB) *Counterparties {
	return &Counterparties{db: db}
}

// ByName looks a counterparty up by exact name.
func (r *Counterparties) ByName(ctx context.Context, name string) (*domain.Counterparty, error) {
	return counterpartyByName(ctx, r.db, name)
}

// Create inserts a counterparty and fills in the generated id.
func (r *Counterparties) Create(ctx context.Context, cp *domain.Counterparty) error {
	return createCounterparty(ctx, r.db, cp)
}

// Update overwrites all mutable fields of a counterparty.
func (r *Counterparties) Update(ctx context.Context, cp *domain.Counterparty) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE counterparties
		 SET name = $2, phone_or_card = $3, bank = $4, is_individual = $5
		 WHERE id = $1`,
		cp.ID, cp.Name, cp.PhoneOrCard, cp.Bank, cp.IsIndividual)
	if err != nil {
		return fmt.Errorf("update counterparty: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a counterparty by id.
func (r *Counterparties) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM counterparties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete counterparty: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// resolve returns the counterparty for a draft, creating it when absent.
// The upsert keeps resolution idempotent on name even for racing creators.
func (r *Counterparties) resolve(ctx context.Context, q sqlx.ExtContext, d *domain.RequestDraft) (*domain.Counterparty, error) {
	cp, err := counterpartyByName(ctx, q, d.CounterpartyName)
	if err == nil {
		return cp, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	cp = &domain.Counterparty{
		Name:         d.CounterpartyName,
		IsIndividual: true,
	}
	// Phone and bank are collected for cash requests only.
	if d.Kind == domain.KindCash {
		if d.PhoneOrCard != "" {
			cp.PhoneOrCard = &d.PhoneOrCard
		}
		if d.Bank != "" {
			cp.Bank = &d.Bank
		}
	}
	if err := createCounterparty(ctx, q, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func counterpartyByName(ctx context.Context, q sqlx.QueryerContext, name string) (*domain.Counterparty, error) {
	var cp domain.Counterparty
	err := sqlx.GetContext(ctx, q, &cp,
		`SELECT id, name, phone_or_card, bank, is_individual
		 FROM counterparties WHERE name = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("counterparty by name: %w", mapNotFound(err))
	}
	return &cp, nil
}

func createCounterparty(ctx context.Context, q sqlx.ExtContext, cp *domain.Counterparty) error {
	err := sqlx.GetContext(ctx, q, &cp.ID,
		`INSERT INTO counterparties (name, phone_or_card, bank, is_individual)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		cp.Name, cp.PhoneOrCard, cp.Bank, cp.IsIndividual)
	if err != nil {
		return fmt.Errorf("create counterparty: %w", err)
	}
	return nil
}
