package state

import (
	"log/slog"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/logger"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	handlers map[State]tele.HandlerFunc
}

// NewMemoryManager constructs the in-memory Manager implementation.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

// RegisterHandler associates a state with its update handler. The Manager
// must be the one returned by NewMemoryManager.
func RegisterHandler(m Manager, st State, h tele.HandlerFunc) {
	mm, ok := m.(*memoryManager)
	if !ok || h == nil {
		return
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.handlers[st] = h
}

// Session returns the session for a user, creating an idle one if absent.
func (m *memoryManager) Session(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[userID]; ok {
		return sess
	}
	sess := &Session{State: StateIdle}
	m.sessions[userID] = sess
	return sess
}

// SetState updates the state for a user, creating a session if necessary.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok {
		sess = &Session{}
		m.sessions[userID] = sess
	}
	sess.State = st
}

// CurrentState returns the FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) CurrentState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// InProgress reports whether the user has an active conversation.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.CurrentState(userID) != StateIdle
}

// Handle executes the handler registered for the user's current state.
func (m *memoryManager) Handle(c tele.Context) error {
	userID := c.Sender().ID
	current := m.CurrentState(userID)

	m.mu.RLock()
	handler, ok := m.handlers[current]
	m.mu.RUnlock()

	logger.TG.Debug("fsm dispatch",
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
		slog.Bool("handled", ok),
	)
	if !ok {
		return nil
	}
	return handler(c)
}
