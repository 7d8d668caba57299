// Package session holds the per-user conversational state that drives
// the guided report flow. State lives in memory only; lifetime equals
// process lifetime.
package session

import (
	"sync"
	"time"

	"reportbot/internal/models"
)

// Step is the user's position in the guided report flow.
type Step int

const (
	StepIdle Step = iota
	StepAwaitingCategory
	StepAwaitingWallet
	StepAwaitingTx
	StepAwaitingDescription
	StepAwaitingAttachment
)

// Session is one user's accumulated report state.
type Session struct {
	Step        Step
	Category    models.Category
	Wallet      string
	Chain       models.Chain
	TxHash      string
	Description string
	Attachments []models.Attachment

	// LastActivity is bumped on every Put and drives the idle sweep.
	LastActivity time.Time
}

// Store abstracts the per-user session and cooldown state so the bot
// logic never touches the maps directly.
type Store interface {
	// Get returns the stored session for the user, or a fresh idle
	// session when none exists. It never returns nil.
	Get(userID int64) *Session
	// Put stores the session for the user, replacing any previous one.
	Put(userID int64, s *Session)
	// Reset removes the user's session and cooldown record.
	Reset(userID int64)
	// Allow reports whether a message from the user may be accepted
	// now. The cooldown timestamp advances only on acceptance, so a
	// rejected burst does not extend the window.
	Allow(userID int64) bool
	// SweepIdle removes sessions idle longer than olderThan and
	// returns how many were dropped.
	SweepIdle(olderThan time.Duration) int
}

// MemoryStore is the in-memory Store. Handlers for different users can
// be in flight concurrently while awaiting Telegram calls, so all map
// access is mutex-guarded.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	lastSeen map[int64]time.Time

	cooldown time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store with the given cooldown window between
// accepted messages from the same user.
func NewMemoryStore(cooldown time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*Session),
		lastSeen: make(map[int64]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(userID int64) *Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return &Session{Step: StepIdle, LastActivity: m.now()}
	}
	return s
}

func (m *MemoryStore) Put(userID int64, s *Session) {
	// The caller may hand back the same *Session the map already holds,
	// so LastActivity must only be written under the lock that SweepIdle
	// reads it under.
	m.mu.Lock()
	s.LastActivity = m.now()
	m.sessions[userID] = s
	m.mu.Unlock()
}

func (m *MemoryStore) Reset(userID int64) {
	m.mu.Lock()
	delete(m.sessions, userID)
	delete(m.lastSeen, userID)
	m.mu.Unlock()
}

func (m *MemoryStore) Allow(userID int64) bool {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	if last, ok := m.lastSeen[userID]; ok && now.Sub(last) < m.cooldown {
		return false
	}
	m.lastSeen[userID] = now
	return true
}

func (m *MemoryStore) SweepIdle(olderThan time.Duration) int {
	cutoff := m.now().Add(-olderThan)
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.LastActivity.Before(cutoff) {
			delete(m.sessions, id)
			delete(m.lastSeen, id)
			removed++
		}
	}
	return removed
}
