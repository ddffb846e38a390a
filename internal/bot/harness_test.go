package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/domain"
	"github.com/m3rciful/cashbot/internal/service"
	"github.com/m3rciful/cashbot/internal/telegram"
	"github.com/m3rciful/cashbot/internal/telegram/sender"
	"github.com/m3rciful/cashbot/internal/telegram/state"
)

// memStore is an in-memory service.Store with the same semantics as the
// PostgreSQL repository: unique counterparty names, proof-guarded payments.
type memStore struct {
	mu             sync.Mutex
	nextID         int64
	users          []domain.User
	counterparties []domain.Counterparty
	cash           []domain.CashRequest
	noncash        []domain.NoCashRequest
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(telegramID string, cash, nonCash int64) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, domain.User{
		ID: s.id(), TelegramID: telegramID, CashBalance: cash, NonCashBalance: nonCash,
	})
	return &s.users[len(s.users)-1]
}

func (s *memStore) UserByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].TelegramID == telegramID {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) AllUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.User(nil), s.users...), nil
}

func (s *memStore) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].TelegramID == u.TelegramID {
			return domain.ErrUserExists
		}
	}
	u.ID = s.id()
	s.users = append(s.users, *u)
	return nil
}

func (s *memStore) CounterpartyByName(ctx context.Context, name string) (*domain.Counterparty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counterpartyByNameLocked(name)
}

func (s *memStore) counterpartyByNameLocked(name string) (*domain.Counterparty, error) {
	for i := range s.counterparties {
		if s.counterparties[i].Name == name {
			cp := s.counterparties[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) CreateRequest(ctx context.Context, userID int64, d *domain.RequestDraft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, err := s.counterpartyByNameLocked(d.CounterpartyName)
	if err != nil {
		ncp := domain.Counterparty{ID: s.id(), Name: d.CounterpartyName, IsIndividual: true}
		if d.Kind == domain.KindCash {
			if d.PhoneOrCard != "" {
				v := d.PhoneOrCard
				ncp.PhoneOrCard = &v
			}
			if d.Bank != "" {
				v := d.Bank
				ncp.Bank = &v
			}
		}
		s.counterparties = append(s.counterparties, ncp)
		cp = &ncp
	}

	if d.Kind == domain.KindNonCash {
		if d.InvoicePath == "" {
			return 0, domain.ErrInvoiceRequired
		}
		req := domain.NoCashRequest{
			ID: s.id(), UserID: userID, CounterpartyID: cp.ID,
			Amount: d.Amount, InvoicePath: d.InvoicePath, Comment: d.Comment,
		}
		s.noncash = append(s.noncash, req)
		return req.ID, nil
	}
	req := domain.CashRequest{
		ID: s.id(), UserID: userID, CounterpartyID: cp.ID,
		Amount: d.Amount, Comment: d.Comment,
	}
	s.cash = append(s.cash, req)
	return req.ID, nil
}

func (s *memStore) userByIDLocked(id int64) *domain.User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

func (s *memStore) counterpartyByIDLocked(id int64) *domain.Counterparty {
	for i := range s.counterparties {
		if s.counterparties[i].ID == id {
			return &s.counterparties[i]
		}
	}
	return nil
}

func (s *memStore) UnpaidCash(ctx context.Context) ([]domain.UnpaidRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.UnpaidRequest
	for i := range s.cash {
		r := s.cash[i]
		if r.Status {
			continue
		}
		out = append(out, s.cashRowLocked(&r))
	}
	return out, nil
}

func (s *memStore) UnpaidNonCash(ctx context.Context) ([]domain.UnpaidRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.UnpaidRequest
	for i := range s.noncash {
		r := s.noncash[i]
		if r.Status {
			continue
		}
		out = append(out, s.noncashRowLocked(&r))
	}
	return out, nil
}

func (s *memStore) cashRowLocked(r *domain.CashRequest) domain.UnpaidRequest {
	row := domain.UnpaidRequest{
		ID: r.ID, Kind: domain.KindCash, Amount: r.Amount, Comment: r.Comment,
	}
	if cp := s.counterpartyByIDLocked(r.CounterpartyID); cp != nil {
		row.CounterpartyName = cp.Name
		row.PhoneOrCard = cp.PhoneOrCard
		row.Bank = cp.Bank
	}
	if u := s.userByIDLocked(r.UserID); u != nil {
		row.OwnerTelegramID = u.TelegramID
	}
	return row
}

func (s *memStore) noncashRowLocked(r *domain.NoCashRequest) domain.UnpaidRequest {
	row := domain.UnpaidRequest{
		ID: r.ID, Kind: domain.KindNonCash, Amount: r.Amount, Comment: r.Comment,
		InvoicePath: r.InvoicePath,
	}
	if cp := s.counterpartyByIDLocked(r.CounterpartyID); cp != nil {
		row.CounterpartyName = cp.Name
	}
	if u := s.userByIDLocked(r.UserID); u != nil {
		row.OwnerTelegramID = u.TelegramID
	}
	return row
}

func (s *memStore) CashDetails(ctx context.Context, id int64) (*domain.UnpaidRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cash {
		if s.cash[i].ID == id {
			row := s.cashRowLocked(&s.cash[i])
			return &row, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) NonCashDetails(ctx context.Context, id int64) (*domain.UnpaidRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.noncash {
		if s.noncash[i].ID == id {
			row := s.noncashRowLocked(&s.noncash[i])
			return &row, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) SetCashPaid(ctx context.Context, id int64, proof string) error {
	if proof == "" {
		return domain.ErrProofRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cash {
		if s.cash[i].ID == id {
			s.cash[i].Status = true
			s.cash[i].CheckFile = proof
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *memStore) SetNonCashPaid(ctx context.Context, id int64, proof string) error {
	if proof == "" {
		return domain.ErrProofRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.noncash {
		if s.noncash[i].ID == id {
			s.noncash[i].Status = true
			s.noncash[i].PaymentSlip = proof
			return nil
		}
	}
	return domain.ErrNotFound
}

// memSender records fan-out deliveries.
type memSender struct {
	mu   sync.Mutex
	sent []sentText
}

type sentText struct {
	to   int64
	text string
}

func (s *memSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := strconv.ParseInt(to.Recipient(), 10, 64)
	text, _ := what.(string)
	s.sent = append(s.sent, sentText{to: id, text: text})
	return &tele.Message{}, nil
}

// memFiles fakes attachment downloads.
type memFiles struct{}

func (memFiles) SaveInvoice(doc *tele.Document) (string, error) {
	return "./invoices/" + doc.FileName, nil
}

func (memFiles) SaveProof(m *tele.Message) (string, error) {
	switch {
	case m.Photo != nil:
		return m.Photo.FileID, nil
	case m.Document != nil:
		return m.Document.FileID, nil
	default:
		return "", errNoAttachment
	}
}

// reply captures one outbound message of a handler invocation.
type reply struct {
	text   string
	markup *tele.ReplyMarkup
}

// testCtx implements the slice of tele.Context the handlers touch.
type testCtx struct {
	tele.Context
	user *tele.User
	msg  *tele.Message
	cb   *tele.Callback
	kv   map[string]any

	replies []reply
}

func (c *testCtx) Sender() *tele.User { return c.user }

func (c *testCtx) Chat() *tele.Chat { return &tele.Chat{ID: c.user.ID} }

func (c *testCtx) Update() tele.Update { return tele.Update{ID: 1} }

func (c *testCtx) Message() *tele.Message { return c.msg }

func (c *testCtx) Callback() *tele.Callback { return c.cb }

func (c *testCtx) Text() string {
	if c.msg == nil {
		return ""
	}
	return c.msg.Text
}

func (c *testCtx) Send(what interface{}, opts ...interface{}) error {
	r := reply{}
	switch v := what.(type) {
	case string:
		r.text = v
	case *tele.Document:
		r.text = v.Caption
	}
	for _, opt := range opts {
		if m, ok := opt.(*tele.ReplyMarkup); ok {
			r.markup = m
		}
	}
	c.replies = append(c.replies, r)
	return nil
}

func (c *testCtx) Respond(resp ...*tele.CallbackResponse) error { return nil }

func (c *testCtx) Get(key string) any { return c.kv[key] }

func (c *testCtx) Set(key string, v any) {
	if c.kv == nil {
		c.kv = map[string]any{}
	}
	c.kv[key] = v
}

// harness drives the wired App the way the transport router would.
type harness struct {
	t          *testing.T
	app        *App
	fsm        state.Manager
	store      *memStore
	out        *memSender
	reg        *telegram.Registry
	dispatcher *sender.Dispatcher
	user       *tele.User
}

const testPassword = "sezam"

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := &memStore{}
	out := &memSender{}
	fsm := state.NewMemoryManager()
	reg := telegram.NewRegistry()
	dispatcher := sender.NewDispatcher(sender.Options{Workers: 1, MaxRetries: 0})
	t.Cleanup(dispatcher.Close)

	app := New(out, service.New(store), fsm, memFiles{}, reg, dispatcher, testPassword)
	app.Wire()

	return &harness{
		t:          t,
		app:        app,
		fsm:        fsm,
		store:      store,
		out:        out,
		reg:        reg,
		dispatcher: dispatcher,
		user:       &tele.User{ID: 100, Username: "alice"},
	}
}

func (h *harness) ctx(msg *tele.Message, cb *tele.Callback) *testCtx {
	return &testCtx{user: h.user, msg: msg, cb: cb}
}

// text dispatches a plain message the way the router resolves it: commands
// first, then the in-flight conversation, then reply-keyboard labels.
func (h *harness) text(text string) *testCtx {
	h.t.Helper()
	c := h.ctx(&tele.Message{Text: text, Sender: h.user}, nil)

	if strings.HasPrefix(text, "/") {
		if _, cmd, ok := h.reg.LookupCommand(text); ok {
			if err := cmd.Handler(c); err != nil {
				h.t.Fatalf("command %q: %v", text, err)
			}
			return c
		}
		h.t.Fatalf("unknown command %q", text)
	}
	if h.fsm.InProgress(h.user.ID) {
		if err := h.fsm.Handle(c); err != nil {
			h.t.Fatalf("fsm input %q: %v", text, err)
		}
		return c
	}
	handler, ok := h.reg.LookupText(text)
	if !ok {
		h.t.Fatalf("no handler for text %q", text)
	}
	if err := handler(c); err != nil {
		h.t.Fatalf("text %q: %v", text, err)
	}
	return c
}

// attachment dispatches a message with a document or photo into the FSM.
func (h *harness) attachment(msg *tele.Message) *testCtx {
	h.t.Helper()
	msg.Sender = h.user
	c := h.ctx(msg, nil)
	if !h.fsm.InProgress(h.user.ID) {
		h.t.Fatal("no conversation in progress for attachment")
	}
	if err := h.fsm.Handle(c); err != nil {
		h.t.Fatalf("fsm attachment: %v", err)
	}
	return c
}

// callback dispatches an inline button press by its unique key and payload.
func (h *harness) callback(unique, payload string) *testCtx {
	h.t.Helper()
	data := "\f" + unique
	if payload != "" {
		data += "|" + payload
	}
	c := h.ctx(&tele.Message{Sender: h.user}, &tele.Callback{Unique: unique, Data: data, Sender: h.user})
	handler, ok := h.reg.GetCallback(unique)
	if !ok {
		h.t.Fatalf("no callback handler for %q", unique)
	}
	if err := handler(c); err != nil {
		h.t.Fatalf("callback %q: %v", unique, err)
	}
	return c
}

func (h *harness) stateIs(want state.State) {
	h.t.Helper()
	if got := h.fsm.CurrentState(h.user.ID); got != want {
		h.t.Fatalf("state = %q, want %q", got, want)
	}
}

func counterpartyFixture(id int64, name string, phone, bank *string) domain.Counterparty {
	return domain.Counterparty{ID: id, Name: name, PhoneOrCard: phone, Bank: bank, IsIndividual: true}
}

func lastReply(t *testing.T, c *testCtx) reply {
	t.Helper()
	if len(c.replies) == 0 {
		t.Fatal("handler sent no reply")
	}
	return c.replies[len(c.replies)-1]
}
