// Package service hosts the application rules between the Telegram handlers
// and the entity store: draft validation, commit, payment, listing and the
// notification fan-out.
package service

import (
	"context"

	"github.com/m3rciful/cashbot/internal/domain"
)

// Store is the entity store surface the service depends on.
// *repo.Repo implements it; tests substitute fakes.
type Store interface {
	UserByTelegramID(ctx context.Context, telegramID string) (*domain.User, error)
	AllUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error

	CounterpartyByName(ctx context.Context, name string) (*domain.Counterparty, error)

	CreateRequest(ctx context.Context, userID int64, d *domain.RequestDraft) (int64, error)
	UnpaidCash(ctx context.Context) ([]domain.UnpaidRequest, error)
	UnpaidNonCash(ctx context.Context) ([]domain.UnpaidRequest, error)
	CashDetails(ctx context.Context, id int64) (*domain.UnpaidRequest, error)
	NonCashDetails(ctx context.Context, id int64) (*domain.UnpaidRequest, error)
	SetCashPaid(ctx context.Context, id int64, proof string) error
	SetNonCashPaid(ctx context.Context, id int64, proof string) error
}

// Service implements the cash-desk workflows on top of a Store.
type Service struct {
	store Store
}

// New builds a Service over the given store.
func New(store Store) *Service {
	return &Service{store: store}
}

// UserByTelegramID resolves the sender identity to a registered user.
func (s *Service) UserByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	return s.store.UserByTelegramID(ctx, telegramID)
}

// Register creates a user with the balances collected during first contact.
func (s *Service) Register(ctx context.Context, telegramID, username string, cash, nonCash int64) (*domain.User, error) {
	u := &domain.User{
		TelegramID:     telegramID,
		Username:       username,
		CashBalance:    cash,
		NonCashBalance: nonCash,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindCounterparty looks a counterparty up by exact name for draft prefill.
func (s *Service) FindCounterparty(ctx context.Context, name string) (*domain.Counterparty, error) {
	return s.store.CounterpartyByName(ctx, name)
}
