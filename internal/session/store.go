package session

import (
	"context"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xiexing/askhub/internal/model"
)

// Store keeps per-session conversation history. Each session is only ever
// touched by its own request flow, so a single map mutex is enough; there is
// no per-message locking.
type Store struct {
	mu       sync.Mutex
	window   int
	sessions map[string]*entry
}

type entry struct {
	messages []model.Message
	lastSeen time.Time
}

func NewStore(window int) *Store {
	if window <= 0 {
		window = 4
	}
	return &Store{
		window:   window,
		sessions: make(map[string]*entry),
	}
}

// Window returns the most recent messages of the session (at most the
// configured window), oldest first. The in-flight user turn must not have
// been appended yet.
func (s *Store) Window(id string) []model.Message {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	e.lastSeen = time.Now()
	window := model.Window(e.messages, s.window)
	out := make([]model.Message, len(window))
	copy(out, window)
	return out
}

// Append records a completed turn.
func (s *Store) Append(id string, msgs ...model.Message) {
	if id == "" || len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{}
		s.sessions[id] = e
	}
	e.messages = append(e.messages, msgs...)
	e.lastSeen = time.Now()
}

func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// EvictIdle drops sessions untouched for longer than maxIdle and returns how
// many were removed.
func (s *Store) EvictIdle(ctx context.Context, maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("idle sessions evicted", zap.Int("count", removed))
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
