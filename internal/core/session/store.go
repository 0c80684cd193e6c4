// Package session keeps per-conversation chat history in memory. History is
// advisory context for generation, not durable state, so a process restart
// simply starts conversations fresh.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/aihorizon/horizon/internal/core/domain"
)

// Store holds bounded chat histories keyed by session id.
type Store struct {
	maxTurns int

	mu       sync.Mutex
	sessions map[string][]domain.Turn
}

func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = domain.SessionMaxTurns
	}
	return &Store{
		maxTurns: maxTurns,
		sessions: make(map[string][]domain.Turn),
	}
}

// History returns a copy of the session's turns in chronological order.
// Unknown sessions yield an empty history.
func (s *Store) History(sessionID string) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.sessions[sessionID]
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}

// Append records one turn. Blank content is dropped so failed generations do
// not pollute the history. When the session exceeds the cap the oldest turns
// are discarded.
func (s *Store) Append(sessionID, role, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.sessions[sessionID], domain.Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.sessions[sessionID] = turns
}
