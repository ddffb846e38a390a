package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/cashbot/internal/domain"
	"github.com/m3rciful/cashbot/internal/logger"
)

// CreateRequest validates a completed draft and commits it for the given
// sender. Counterparty resolution and the request insert run in a single
// store transaction.
func (s *Service) CreateRequest(ctx context.Context, telegramID string, d *domain.RequestDraft) (int64, error) {
	if err := validateDraft(d); err != nil {
		return 0, err
	}

	user, err := s.store.UserByTelegramID(ctx, telegramID)
	if err != nil {
		return 0, fmt.Errorf("resolve sender: %w", err)
	}

	id, err := s.store.CreateRequest(ctx, user.ID, d)
	if err != nil {
		return 0, err
	}

	logger.Event(ctx, logger.SVCRequests, slog.LevelInfo, "request created",
		slog.Int64("request_id", id),
		slog.String("kind", string(d.Kind)),
		slog.Int64("amount", d.Amount),
		slog.String("counterparty", logger.SanitizeLimit(d.CounterpartyName, 128)),
	)
	return id, nil
}

// Unpaid returns all unpaid requests of the given kind, stable order.
func (s *Service) Unpaid(ctx context.Context, kind domain.RequestKind) ([]domain.UnpaidRequest, error) {
	if kind == domain.KindNonCash {
		return s.store.UnpaidNonCash(ctx)
	}
	return s.store.UnpaidCash(ctx)
}

// RequestDetails returns one request joined with its counterparty and owner.
func (s *Service) RequestDetails(ctx context.Context, kind domain.RequestKind, id int64) (*domain.UnpaidRequest, error) {
	if kind == domain.KindNonCash {
		return s.store.NonCashDetails(ctx, id)
	}
	return s.store.CashDetails(ctx, id)
}

// Pay flips a request to paid with the given proof reference. An empty proof
// is rejected and the record stays unchanged. Racing payers are not detected:
// the later write wins.
func (s *Service) Pay(ctx context.Context, kind domain.RequestKind, id int64, proof string) error {
	var err error
	if kind == domain.KindNonCash {
		err = s.store.SetNonCashPaid(ctx, id, proof)
	} else {
		err = s.store.SetCashPaid(ctx, id, proof)
	}
	if err != nil {
		return err
	}

	logger.Event(ctx, logger.SVCRequests, slog.LevelInfo, "request paid",
		slog.Int64("request_id", id),
		slog.String("kind", string(kind)),
	)
	return nil
}

func validateDraft(d *domain.RequestDraft) error {
	if d == nil {
		return fmt.Errorf("empty draft")
	}
	if d.Kind != domain.KindCash && d.Kind != domain.KindNonCash {
		return fmt.Errorf("unknown request kind %q", d.Kind)
	}
	if d.CounterpartyName == "" {
		return fmt.Errorf("counterparty name is required")
	}
	if d.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if d.Kind == domain.KindNonCash && d.InvoicePath == "" {
		return domain.ErrInvoiceRequired
	}
	return nil
}
