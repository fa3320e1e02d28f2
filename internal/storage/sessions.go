package storage

import (
	"errors"
	"sync"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStorage keeps one lesson session per user in memory.
// Callers only ever see clones; mutations go through Update.
type SessionStorage struct {
	mu       sync.Mutex
	sessions map[int64]*entities.Session
}

// NewSessionStorage creates a new SessionStorage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[int64]*entities.Session),
	}
}

// Get returns a copy of the user's session.
func (s *SessionStorage) Get(userID int64) (*entities.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// GetOrCreate returns the user's session, creating it with create when missing.
func (s *SessionStorage) GetOrCreate(userID int64, create func() *entities.Session) *entities.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = create()
		s.sessions[userID] = sess
	}
	return sess.Clone()
}

// Update applies fn to a copy of the session and keeps the copy only when fn succeeds.
func (s *SessionStorage) Update(userID int64, fn func(sess *entities.Session) error) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	next := sess.Clone()
	if err := fn(next); err != nil {
		return sess.Clone(), err
	}
	s.sessions[userID] = next
	return next.Clone(), nil
}

// Delete removes the user's session.
func (s *SessionStorage) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len returns the number of live sessions.
func (s *SessionStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
