// Package session tracks in-flight reconciliation sessions. A session
// is the ephemeral, never-persisted set of statement lines produced by
// one parse; it lives only in memory and disappears on restart.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propbooks/cardledger/internal/domain"
)

// Session is one reconciliation session.
type Session struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Lines     []domain.StatementLine `json:"lines"`
	Skipped   int                    `json:"skipped"`
}

// Manager stores sessions in memory and is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Create opens a session over the parsed statement lines.
func (m *Manager) Create(lines []domain.StatementLine, skipped int) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Lines:     append([]domain.StatementLine(nil), lines...),
		Skipped:   skipped,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s

	return m.copyOf(s)
}

// Get retrieves a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return m.copyOf(s), nil
}

// MarkReconciled flags one statement line in a session as matched. The
// ledger-side reconciled flag is the store's concern; this only records
// the session-side state.
func (m *Manager) MarkReconciled(sessionID, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	for i := range s.Lines {
		if s.Lines[i].ID == lineID {
			s.Lines[i].Reconciled = true
			return nil
		}
	}
	return fmt.Errorf("statement line not found: %s", lineID)
}

// Line returns one statement line from a session.
func (m *Manager) Line(sessionID, lineID string) (domain.StatementLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.StatementLine{}, fmt.Errorf("session not found: %s", sessionID)
	}
	for _, line := range s.Lines {
		if line.ID == lineID {
			return line, nil
		}
	}
	return domain.StatementLine{}, fmt.Errorf("statement line not found: %s", lineID)
}

// Close discards a session. Closing an unknown id is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// copyOf returns a copy to avoid external modifications.
func (m *Manager) copyOf(s *Session) *Session {
	out := *s
	out.Lines = append([]domain.StatementLine(nil), s.Lines...)
	return &out
}
