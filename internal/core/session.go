package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for an unknown or expired import session.
var ErrSessionNotFound = errors.New("import not found")

// DefaultSessionTTL is how long an import preview stays available.
const DefaultSessionTTL = 30 * time.Minute

// SessionStore keeps import sessions between the upload and proceed requests.
type SessionStore interface {
	Save(ctx context.Context, sess *ImportSession) error
	Get(ctx context.Context, id string) (*ImportSession, error)
	Delete(ctx context.Context, id string) error

	// Update applies fn to the stored session and saves the result as one
	// atomic step. Concurrent updates of the same session are serialized.
	// An error from fn leaves the stored session unchanged.
	Update(ctx context.Context, id string, fn func(*ImportSession) error) (*ImportSession, error)
}

// Sweeper is implemented by session stores that must evict expired entries
// themselves.
type Sweeper interface {
	Sweep(now time.Time) int
}

// MemorySessionStore is an in-process SessionStore. Expired sessions are
// invisible to Get and removed by Sweep.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ImportSession
	now      func() time.Time
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*ImportSession),
		now:      time.Now,
	}
}

// Save stores a copy of sess, replacing any session with the same id.
func (m *MemorySessionStore) Save(_ context.Context, sess *ImportSession) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("save session: missing id")
	}
	cp := cloneSession(sess)

	m.mu.Lock()
	m.sessions[sess.ID] = cp
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the session.
func (m *MemorySessionStore) Get(_ context.Context, id string) (*ImportSession, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || m.expired(sess, m.now()) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return cloneSession(sess), nil
}

// Update runs fn on a copy of the session under the store lock and stores
// the copy when fn succeeds.
func (m *MemorySessionStore) Update(_ context.Context, id string, fn func(*ImportSession) error) (*ImportSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok || m.expired(sess, m.now()) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	cp := cloneSession(sess)
	if err := fn(cp); err != nil {
		return nil, err
	}
	m.sessions[id] = cloneSession(cp)
	return cp, nil
}

// Delete removes the session. Deleting an unknown id is not an error.
func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Sweep removes sessions that expired before now and returns how many.
func (m *MemorySessionStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if m.expired(sess, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemorySessionStore) expired(sess *ImportSession, now time.Time) bool {
	return !sess.ExpiresAt.IsZero() && !now.Before(sess.ExpiresAt)
}

// cloneSession copies the slices a caller might mutate.
func cloneSession(sess *ImportSession) *ImportSession {
	cp := *sess
	cp.Selected = append([]string(nil), sess.Selected...)
	cp.Result.Errors = append([]ImportError{}, sess.Result.Errors...)
	cp.Result.Warnings = append([]ImportWarning{}, sess.Result.Warnings...)
	cp.Result.Conflicts = append([]ImportConflict{}, sess.Result.Conflicts...)
	return &cp
}
