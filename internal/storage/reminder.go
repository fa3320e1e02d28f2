package storage

import (
	"sync"
	"time"
)

// NudgeMessage is a reminder message that is still visible in the chat.
type NudgeMessage struct {
	ChatID    int64
	MessageID int
	SentAt    time.Time
}

// NudgeStorage remembers the last reminder sent to each user so it can be
// removed once the user starts a lesson or a newer reminder replaces it.
type NudgeStorage struct {
	mu       sync.Mutex
	messages map[int64]NudgeMessage
	now      func() time.Time
}

func NewNudgeStorage() *NudgeStorage {
	return &NudgeStorage{
		messages: make(map[int64]NudgeMessage),
		now:      time.Now,
	}
}

// Swap stores the new reminder and returns the one it replaces.
func (s *NudgeStorage) Swap(userID, chatID int64, messageID int) (prev NudgeMessage, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.messages[userID]
	s.messages[userID] = NudgeMessage{
		ChatID:    chatID,
		MessageID: messageID,
		SentAt:    s.now(),
	}
	return prev, hadPrev
}

// Take removes and returns the user's reminder.
func (s *NudgeStorage) Take(userID int64) (NudgeMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[userID]
	if ok {
		delete(s.messages, userID)
	}
	return msg, ok
}
