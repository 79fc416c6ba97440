package store

import (
	"context"
	"sync"
)

// Memory keeps the session in process. It backs tests and the dev server's
// own clients.
type Memory struct {
	mu      sync.Mutex
	session Session
	clears  int
}

// NewMemory returns a Memory store seeded with s.
func NewMemory(s Session) *Memory {
	return &Memory{session: s}
}

func (m *Memory) Load(_ context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s, nil
}

func (m *Memory) SetTokens(_ context.Context, access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Token = access
	if refresh != "" {
		m.session.RefreshToken = refresh
	}
	return nil
}

func (m *Memory) SetUser(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u == nil {
		m.session.User = nil
		return nil
	}
	cp := *u
	m.session.User = &cp
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{}
	m.clears++
	return nil
}

// Clears reports how many times Clear was called.
func (m *Memory) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}
