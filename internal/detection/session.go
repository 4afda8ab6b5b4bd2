package detection

import (
	"context"
	"log"
	"sync"
	"time"
)

// Session holds the streaming state for one analysis stream. All reads and
// writes go through mu so that concurrent frames for the same session id
// observe the buffers atomically.
type Session struct {
	mu       sync.Mutex
	colors   *ColorBuffer
	window   *ConfidenceWindow
	lastSeen time.Time
}

// SessionStore owns all per-session state, keyed by an opaque session id.
// Sessions are created lazily on first reference.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
	now      func() time.Time
}

func NewSessionStore(cfg Config) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		now:      time.Now,
	}
}

// GetOrCreate returns the session for id, creating it on first use.
// Repeated calls with the same id return the same state object.
func (s *SessionStore) GetOrCreate(id string) *Session {
	s.mu.RLock()
	session, exists := s.sessions[id]
	s.mu.RUnlock()
	if exists {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, exists = s.sessions[id]; exists {
		return session
	}
	session = &Session{
		colors:   NewColorBuffer(s.cfg.BufferCapacity),
		window:   NewConfidenceWindow(s.cfg.WindowSize),
		lastSeen: s.now(),
	}
	s.sessions[id] = session
	return session
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Touch marks the session as recently active so the reaper keeps it.
func (sess *Session) Touch(now time.Time) {
	sess.mu.Lock()
	sess.lastSeen = now
	sess.mu.Unlock()
}

func (sess *Session) idleSince(now time.Time) time.Duration {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return now.Sub(sess.lastSeen)
}

// Summary is a point-in-time snapshot of a session's buffered state.
type Summary struct {
	ColorSamples      int
	ConfidenceSamples int
	LastSeen          time.Time
}

func (s *SessionStore) Summary(id string) (Summary, bool) {
	s.mu.RLock()
	session, exists := s.sessions[id]
	s.mu.RUnlock()
	if !exists {
		return Summary{}, false
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return Summary{
		ColorSamples:      session.colors.Len(),
		ConfidenceSamples: session.window.Len(),
		LastSeen:          session.lastSeen,
	}, true
}

// StartReaper removes sessions idle for longer than ttl, sweeping every
// interval until ctx is done. Without it memory grows with the number of
// distinct session ids ever seen.
func (s *SessionStore) StartReaper(ctx context.Context, ttl, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reap(ttl)
			}
		}
	}()
}

func (s *SessionStore) reap(ttl time.Duration) {
	now := s.now()

	s.mu.RLock()
	var expired []string
	for id, session := range s.sessions {
		if session.idleSince(now) > ttl {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return
	}

	s.mu.Lock()
	for _, id := range expired {
		// Re-check under the write lock; the session may have been
		// touched between the scan and now.
		if session, ok := s.sessions[id]; ok && session.idleSince(now) > ttl {
			delete(s.sessions, id)
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	log.Printf("[SESSION] Reaped %d idle sessions, %d active", len(expired), remaining)
}
