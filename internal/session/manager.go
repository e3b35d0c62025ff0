// Package session tracks match sessions: one parsed profile plus the
// orchestrated run driven against it.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/room-matcher/backend/internal/matcher"
	"github.com/room-matcher/backend/internal/models"
)

// MaxSessions limits concurrent sessions to prevent memory exhaustion.
const MaxSessions = 50

// Session is the externally visible session state.
type Session struct {
	ID        string                `json:"id"`
	Profile   *models.ParsedProfile `json:"profile"`
	SampleKey string                `json:"sampleKey"`
	CreatedAt time.Time             `json:"createdAt"`
}

// state holds a session plus its orchestrator.
type state struct {
	session      *Session
	orch         *matcher.Orchestrator
	lastAccessed time.Time
}

// Manager handles active match sessions. Each session owns its own
// orchestrator so runs in different sessions never share running state.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*state

	scorer    matcher.Scorer
	fallbacks *matcher.Fallbacks
	opts      matcher.Options
}

// NewManager creates a session manager. scorer, fallbacks and opts are
// handed to every session's orchestrator.
func NewManager(scorer matcher.Scorer, fallbacks *matcher.Fallbacks, opts matcher.Options) *Manager {
	return &Manager{
		sessions:  make(map[string]*state),
		scorer:    scorer,
		fallbacks: fallbacks,
		opts:      opts,
	}
}

// Create opens a session around a freshly parsed profile.
func (m *Manager) Create(profile *models.ParsedProfile, sampleKey string) (*Session, error) {
	if profile == nil {
		return nil, fmt.Errorf("session needs a parsed profile")
	}
	if sampleKey == "" {
		sampleKey = matcher.DefaultSampleKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= MaxSessions {
		m.evictOldestLocked()
	}

	sess := &Session{
		ID:        uuid.New().String(),
		Profile:   profile,
		SampleKey: sampleKey,
		CreatedAt: time.Now(),
	}
	m.sessions[sess.ID] = &state{
		session:      sess,
		orch:         matcher.New(m.scorer, m.fallbacks, m.opts),
		lastAccessed: time.Now(),
	}

	return sess, nil
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return st.session, true
}

// UpdateProfile replaces a session's profile wholesale (user edit).
func (m *Manager) UpdateProfile(id string, profile *models.ParsedProfile) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return false
	}
	st.session.Profile = profile
	st.lastAccessed = time.Now()
	return true
}

// StartRun starts the orchestrated run for a session. It returns the run
// and true when started, or the in-flight run and false when one is already
// active (the second request is a no-op).
func (m *Manager) StartRun(id string) (*models.MatchRun, bool, error) {
	m.mu.Lock()
	st, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, false, fmt.Errorf("session not found: %s", id)
	}
	st.lastAccessed = time.Now()
	profile := st.session.Profile
	sampleKey := st.session.SampleKey
	orch := st.orch
	m.mu.Unlock()

	run, started := orch.TryStart(profile, sampleKey)
	return run, started, nil
}

// GetRun returns a snapshot of a session's current run, nil when no run has
// been started.
func (m *Manager) GetRun(id string) (*models.MatchRun, bool) {
	m.mu.RLock()
	st, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return st.orch.Run(), true
}

// Touch extends a session's lifetime while it is actively viewed.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return false
	}
	st.lastAccessed = time.Now()
	return true
}

// Delete removes a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// CleanupOldSessions removes sessions idle longer than maxAge. Sessions
// with a run still in flight are kept.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, st := range m.sessions {
		if st.lastAccessed.Before(cutoff) && !st.orch.Running() {
			delete(m.sessions, id)
		}
	}
}

// evictOldestLocked drops the least recently used idle session. Callers
// must hold m.mu.
func (m *Manager) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, st := range m.sessions {
		if st.orch.Running() {
			continue
		}
		if oldestID == "" || st.lastAccessed.Before(oldest) {
			oldestID = id
			oldest = st.lastAccessed
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
	}
}
