package services

import (
	"errors"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voicedesk-co/voicedesk-backend/internal/models"
)

// ErrSessionNotFound is returned when no active session exists for a call
var ErrSessionNotFound = errors.New("session not found")

const cleanupInterval = 1 * time.Minute

// SessionStore is the registry of active call sessions. Each call gets its
// own mutex so two webhooks for the same call never interleave, while
// unrelated calls proceed independently. The store-level lock only guards
// the map itself.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]*callEntry

	sessionTTL time.Duration
	stopOnce   sync.Once
	stop       chan struct{}
}

// callEntry pairs a session with its per-call mutex. The session field is
// guarded by the entry mutex, not the store lock; callers must hold the
// per-call lock (via LockCall) around Get/CreateOrReset/Remove/Touch.
type callEntry struct {
	mu      sync.Mutex
	session *models.CallSession
}

// NewSessionStore creates a session store and starts its cleanup routine
func NewSessionStore(sessionTTL time.Duration) *SessionStore {
	s := &SessionStore{
		entries:    make(map[string]*callEntry),
		sessionTTL: sessionTTL,
		stop:       make(chan struct{}),
	}

	go s.cleanupExpiredSessions()

	return s
}

// SessionTTLFromEnv reads SESSION_TTL_MINUTES, defaulting to 30 minutes
func SessionTTLFromEnv() time.Duration {
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
		log.Printf("⚠️  Invalid SESSION_TTL_MINUTES %q, using default", v)
	}
	return 30 * time.Minute
}

// Close stops the cleanup routine
func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// LockCall acquires the per-call mutex and returns the unlock func. All
// session reads and writes for one webhook turn happen under this lock, so
// a duplicate or retried callback for the same call serializes behind it.
func (s *SessionStore) LockCall(callID string) (unlock func()) {
	for {
		s.mu.Lock()
		entry, exists := s.entries[callID]
		if !exists {
			entry = &callEntry{}
			s.entries[callID] = entry
		}
		s.mu.Unlock()

		entry.mu.Lock()

		// The cleanup routine may have evicted the entry between the map
		// lookup and the lock acquisition; retry on a stale entry.
		s.mu.RLock()
		current := s.entries[callID]
		s.mu.RUnlock()
		if current == entry {
			return entry.mu.Unlock
		}
		entry.mu.Unlock()
	}
}

// Get retrieves the active session for a call. Callers must hold the
// per-call lock.
func (s *SessionStore) Get(callID string) (*models.CallSession, error) {
	s.mu.RLock()
	entry, exists := s.entries[callID]
	s.mu.RUnlock()

	if !exists || entry.session == nil {
		return nil, ErrSessionNotFound
	}
	return entry.session, nil
}

// CreateOrReset builds a fresh session for a call, overwriting any prior
// one: the provider's initial callback is the authoritative signal that a
// new conversation started. Callers must hold the per-call lock.
func (s *SessionStore) CreateOrReset(callID, callerNumber string) *models.CallSession {
	s.mu.Lock()
	entry, exists := s.entries[callID]
	if !exists {
		entry = &callEntry{}
		s.entries[callID] = entry
	}
	s.mu.Unlock()

	now := time.Now()
	session := &models.CallSession{
		SessionID:     uuid.NewString(),
		CallID:        callID,
		CallerNumber:  callerNumber,
		State:         models.StateGreeting,
		CreatedAt:     now,
		LastTouchedAt: now,
	}
	entry.session = session

	log.Printf("Session created for call %s (%s)", callID, callerNumber)
	return session
}

// Remove drops the session for a call. The entry itself lingers until the
// cleanup routine collects it, so an in-flight duplicate still serializes.
// Callers must hold the per-call lock.
func (s *SessionStore) Remove(callID string) {
	s.mu.RLock()
	entry, exists := s.entries[callID]
	s.mu.RUnlock()

	if exists && entry.session != nil {
		log.Printf("Session removed for call %s (state: %s)", callID, entry.session.State)
		entry.session = nil
	}
}

// Touch refreshes the idle-eviction clock for a call. Callers must hold
// the per-call lock.
func (s *SessionStore) Touch(callID string) {
	s.mu.RLock()
	entry, exists := s.entries[callID]
	s.mu.RUnlock()

	if exists && entry.session != nil {
		entry.session.LastTouchedAt = time.Now()
	}
}

// ActiveCount returns the number of live sessions (for monitoring)
func (s *SessionStore) ActiveCount() int {
	s.mu.RLock()
	entries := make([]*callEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	count := 0
	for _, entry := range entries {
		if !entry.mu.TryLock() {
			// a turn is being processed right now
			count++
			continue
		}
		if entry.session != nil {
			count++
		}
		entry.mu.Unlock()
	}
	return count
}

// cleanupExpiredSessions runs periodically to purge idle sessions — calls
// the provider abandoned without a termination callback
func (s *SessionStore) cleanupExpiredSessions() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.evictIdle(time.Now()); n > 0 {
				log.Printf("Cleaned up %d idle call session(s)", n)
			}
		}
	}
}

// evictIdle removes entries whose session went idle past the TTL, plus
// empty entries left behind by Remove. Entries whose lock is held are
// skipped: a turn is in flight.
func (s *SessionStore) evictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for callID, entry := range s.entries {
		if !entry.mu.TryLock() {
			continue
		}
		idle := entry.session == nil || now.Sub(entry.session.LastTouchedAt) > s.sessionTTL
		if idle {
			delete(s.entries, callID)
			evicted++
		}
		entry.mu.Unlock()
	}
	return evicted
}
