package ai

import (
	"fmt"
	"sync"

	"github.com/benvon/talk-to-my-ai/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxTurns is how many recent messages are kept per user
const DefaultMaxTurns = 20

// HistoryStore remembers recent conversation turns per user so clients that do not send a
// history still get conversational context. The least recently active users are evicted once
// the store holds more than its size.
type HistoryStore struct {
	mu       sync.Mutex
	sessions *lru.Cache[string, []models.Message]
	maxTurns int
}

// NewHistoryStore creates a store for up to size users, each keeping maxTurns messages
func NewHistoryStore(size, maxTurns int) (*HistoryStore, error) {
	cache, err := lru.New[string, []models.Message](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create history cache: %w", err)
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &HistoryStore{sessions: cache, maxTurns: maxTurns}, nil
}

// Recent returns a copy of the remembered turns for userID, oldest first
func (s *HistoryStore) Recent(userID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.sessions.Get(userID)
	if !ok {
		return nil
	}
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Append records one exchange for userID and trims the oldest turns beyond maxTurns
func (s *HistoryStore) Append(userID string, msgs ...models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, _ := s.sessions.Get(userID)
	merged := make([]models.Message, 0, len(existing)+len(msgs))
	merged = append(merged, existing...)
	merged = append(merged, msgs...)
	if len(merged) > s.maxTurns {
		merged = merged[len(merged)-s.maxTurns:]
	}
	s.sessions.Add(userID, merged)
}

// Forget drops a user's remembered turns
func (s *HistoryStore) Forget(userID string) {
	s.sessions.Remove(userID)
}

// Len returns the number of users with remembered turns
func (s *HistoryStore) Len() int {
	return s.sessions.Len()
}
