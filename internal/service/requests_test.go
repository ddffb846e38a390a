package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/cashbot/internal/domain"
)

// fakeStore lets each test wire only the calls it expects.
type fakeStore struct {
	userByTelegramID func(ctx context.Context, telegramID string) (*domain.User, error)
	allUsers         func(ctx context.Context) ([]domain.User, error)
	createUser       func(ctx context.Context, u *domain.User) error

	counterpartyByName func(ctx context.Context, name string) (*domain.Counterparty, error)

	createRequest  func(ctx context.Context, userID int64, d *domain.RequestDraft) (int64, error)
	unpaidCash     func(ctx context.Context) ([]domain.UnpaidRequest, error)
	unpaidNonCash  func(ctx context.Context) ([]domain.UnpaidRequest, error)
	cashDetails    func(ctx context.Context, id int64) (*domain.UnpaidRequest, error)
	nonCashDetails func(ctx context.Context, id int64) (*domain.UnpaidRequest, error)
	setCashPaid    func(ctx context.Context, id int64, proof string) error
	setNonCashPaid func(ctx context.Context, id int64, proof string) error
}

func (f *fakeStore) UserByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	return f.userByTelegramID(ctx, telegramID)
}
func (f *fakeStore) AllUsers(ctx context.Context) ([]domain.User, error) { return f.allUsers(ctx) }
func (f *fakeStore) CreateUser(ctx context.Context, u *domain.User) error {
	return f.createUser(ctx, u)
}
func (f *fakeStore) CounterpartyByName(ctx context.Context, name string) (*domain.Counterparty, error) {
	return f.counterpartyByName(ctx, name)
}
func (f *fakeStore) CreateRequest(ctx context.Context, userID int64, d *domain.RequestDraft) (int64, error) {
	return f.createRequest(ctx, userID, d)
}
func (f *fakeStore) UnpaidCash(ctx context.Context) ([]domain.UnpaidRequest, error) {
	return f.unpaidCash(ctx)
}
func (f *fakeStore) UnpaidNonCash(ctx context.Context) ([]domain.UnpaidRequest, error) {
	return f.unpaidNonCash(ctx)
}
func (f *fakeStore) CashDetails(ctx context.Context, id int64) (*domain.UnpaidRequest, error) {
	return f.cashDetails(ctx, id)
}
func (f *fakeStore) NonCashDetails(ctx context.Context, id int64) (*domain.UnpaidRequest, error) {
	return f.nonCashDetails(ctx, id)
}
func (f *fakeStore) SetCashPaid(ctx context.Context, id int64, proof string) error {
	return f.setCashPaid(ctx, id, proof)
}
func (f *fakeStore) SetNonCashPaid(ctx context.Context, id int64, proof string) error {
	return f.setNonCashPaid(ctx, id, proof)
}

func TestCreateRequestValidation(t *testing.T) {
	svc := New(&fakeStore{})
	ctx := context.Background()

	cases := []struct {
		name  string
		draft *domain.RequestDraft
	}{
		{"nil draft", nil},
		{"unknown kind", &domain.RequestDraft{Kind: "card", CounterpartyName: "A", Amount: 1}},
		{"empty counterparty", &domain.RequestDraft{Kind: domain.KindCash, Amount: 1}},
		{"zero amount", &domain.RequestDraft{Kind: domain.KindCash, CounterpartyName: "A"}},
		{"negative amount", &domain.RequestDraft{Kind: domain.KindCash, CounterpartyName: "A", Amount: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRequest(ctx, "100", tc.draft)
			require.Error(t, err)
		})
	}
}

func TestCreateRequestNonCashRequiresInvoice(t *testing.T) {
	svc := New(&fakeStore{})
	_, err := svc.CreateRequest(context.Background(), "100", &domain.RequestDraft{
		Kind:             domain.KindNonCash,
		CounterpartyName: "ООО Ромашка",
		Amount:           500,
	})
	require.ErrorIs(t, err, domain.ErrInvoiceRequired)
}

func TestCreateRequestCommits(t *testing.T) {
	var gotUserID int64
	var gotDraft *domain.RequestDraft
	store := &fakeStore{
		userByTelegramID: func(ctx context.Context, telegramID string) (*domain.User, error) {
			require.Equal(t, "100", telegramID)
			return &domain.User{ID: 7, TelegramID: telegramID}, nil
		},
		createRequest: func(ctx context.Context, userID int64, d *domain.RequestDraft) (int64, error) {
			gotUserID = userID
			gotDraft = d
			return 42, nil
		},
	}

	draft := &domain.RequestDraft{
		Kind:             domain.KindCash,
		CounterpartyName: "Contractor A",
		Amount:           1000,
		PhoneOrCard:      "+1234",
		Bank:             "BankX",
		Comment:          "office",
	}
	id, err := New(store).CreateRequest(context.Background(), "100", draft)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.Equal(t, int64(7), gotUserID)
	require.Same(t, draft, gotDraft)
}

func TestCreateRequestUnknownSender(t *testing.T) {
	store := &fakeStore{
		userByTelegramID: func(ctx context.Context, telegramID string) (*domain.User, error) {
			return nil, domain.ErrNotFound
		},
	}
	_, err := New(store).CreateRequest(context.Background(), "100", &domain.RequestDraft{
		Kind:             domain.KindCash,
		CounterpartyName: "A",
		Amount:           1,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPayDelegatesByKind(t *testing.T) {
	var cashCalls, nonCashCalls int
	store := &fakeStore{
		setCashPaid: func(ctx context.Context, id int64, proof string) error {
			cashCalls++
			require.Equal(t, int64(3), id)
			require.Equal(t, "file-id", proof)
			return nil
		},
		setNonCashPaid: func(ctx context.Context, id int64, proof string) error {
			nonCashCalls++
			return nil
		},
	}
	svc := New(store)

	require.NoError(t, svc.Pay(context.Background(), domain.KindCash, 3, "file-id"))
	require.NoError(t, svc.Pay(context.Background(), domain.KindNonCash, 4, "slip-id"))
	require.Equal(t, 1, cashCalls)
	require.Equal(t, 1, nonCashCalls)
}

func TestPayPropagatesProofGuard(t *testing.T) {
	store := &fakeStore{
		setCashPaid: func(ctx context.Context, id int64, proof string) error {
			return domain.ErrProofRequired
		},
	}
	err := New(store).Pay(context.Background(), domain.KindCash, 3, "")
	require.ErrorIs(t, err, domain.ErrProofRequired)
}

func TestRequestDetailsSwitchesStore(t *testing.T) {
	store := &fakeStore{
		cashDetails: func(ctx context.Context, id int64) (*domain.UnpaidRequest, error) {
			return &domain.UnpaidRequest{ID: id, Kind: domain.KindCash}, nil
		},
		nonCashDetails: func(ctx context.Context, id int64) (*domain.UnpaidRequest, error) {
			return &domain.UnpaidRequest{ID: id, Kind: domain.KindNonCash}, nil
		},
	}
	svc := New(store)

	r, err := svc.RequestDetails(context.Background(), domain.KindCash, 1)
	require.NoError(t, err)
	require.Equal(t, domain.KindCash, r.Kind)

	r, err = svc.RequestDetails(context.Background(), domain.KindNonCash, 2)
	require.NoError(t, err)
	require.Equal(t, domain.KindNonCash, r.Kind)
}

func TestUnpaidErrorPassthrough(t *testing.T) {
	boom := errors.New("db gone")
	store := &fakeStore{
		unpaidCash: func(ctx context.Context) ([]domain.UnpaidRequest, error) { return nil, boom },
	}
	_, err := New(store).Unpaid(context.Background(), domain.KindCash)
	require.ErrorIs(t, err, boom)
}
