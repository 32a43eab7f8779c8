package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/crispterm/internal/interview"
)

// MemoryStore is an in-process Store, used in tests and when running
// without a remote service configured for the candidates command.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]interview.Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]interview.Session)}
}

func (m *MemoryStore) Push(_ context.Context, s interview.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*interview.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	return &s, nil
}

func (m *MemoryStore) List(_ context.Context, opts ListOptions) ([]Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var list []Candidate
	for _, s := range m.sessions {
		c := candidateOf(s)
		if matchCandidate(c, opts.Query) {
			list = append(list, c)
		}
	}

	sortCandidates(list, opts.Sort)

	if len(list) > listLimit {
		list = list[:listLimit]
	}
	return list, nil
}

// Len reports how many sessions have been pushed.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
