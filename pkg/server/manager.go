package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/fractals/internal/errors"
)

// SessionManager tracks open navigation sessions.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	closed   bool

	maxSessions int

	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peakSessions int

	metrics *Metrics
	logger  *slog.Logger
}

// NewSessionManager creates a manager. maxSessions <= 0 means no limit.
func NewSessionManager(maxSessions int, metrics *Metrics, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		metrics:     metrics,
		logger:      logger,
	}
}

// Add tracks s. It fails when the manager is shut down or full.
func (sm *SessionManager) Add(s *Session) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.closed {
		return errors.Newf(errors.CategoryNavigation, "server shutting down")
	}
	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		return errors.Newf(errors.CategoryNavigation, "session limit reached (%d)", sm.maxSessions)
	}
	sm.sessions[s.ID] = s
	if len(sm.sessions) > sm.peakSessions {
		sm.peakSessions = len(sm.sessions)
	}
	sm.totalCreated.Add(1)
	sm.metrics.sessionOpened()
	return nil
}

// Remove stops tracking the session with id.
func (sm *SessionManager) Remove(id string) {
	sm.mu.Lock()
	_, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()
	if ok {
		sm.totalClosed.Add(1)
		sm.metrics.sessionClosed()
	}
}

// Get returns the session with id, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Count returns the number of open sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ForEach iterates over all sessions.
// The callback should not perform long-running operations as it holds the read lock.
func (sm *SessionManager) ForEach(fn func(*Session) bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, s := range sm.sessions {
		if !fn(s) {
			break
		}
	}
}

// Shutdown closes every session and rejects new ones.
func (sm *SessionManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	sm.closed = true
	sessions := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.Unlock()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, s := range sessions {
			wg.Add(1)
			go func(s *Session) {
				defer wg.Done()
				s.Close()
				sm.Remove(s.ID)
			}(s)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		sm.logger.Info("session manager shutdown", "closed_sessions", len(sessions))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns aggregated session statistics.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
		Peak:         sm.peakSessions,
	}
}

// ManagerStats contains aggregated session statistics.
type ManagerStats struct {
	Active       int    `json:"active"`
	TotalCreated uint64 `json:"totalCreated"`
	TotalClosed  uint64 `json:"totalClosed"`
	Peak         int    `json:"peak"`
}
