// Package sessions keeps quiz sessions in memory, keyed by a random id and
// expired after a period of inactivity.
package sessions

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

type entry struct {
	session   *affinity.Session
	createdAt time.Time
	lastSeen  time.Time
}

// Config controls expiry and capacity.
type Config struct {
	TTL             time.Duration
	MaxSessions     int
	CleanupInterval time.Duration

	// OnChange, when set, receives the store size after sessions are
	// added or removed.
	OnChange func(size int)
}

// Store holds sessions. Every access to a session goes through With, under
// the store lock, since affinity.Session is not safe for concurrent use.
type Store struct {
	engine *affinity.Engine
	cfg    Config
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore creates a store and starts its janitor.
func NewStore(engine *affinity.Engine, cfg Config) *Store {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	s := &Store{
		engine:  engine,
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}

	go s.janitor()

	return s
}

// Close stops the janitor. Sessions stay readable.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// Create registers a new session in the intro phase and returns its id.
// When the store is full the least recently used session is dropped.
func (s *Store) Create() (string, *affinity.Session) {
	id := uuid.NewString()
	sess := s.engine.NewSession()
	now := s.now()

	s.mu.Lock()
	if s.cfg.MaxSessions > 0 && len(s.entries) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}
	s.entries[id] = &entry{session: sess, createdAt: now, lastSeen: now}
	size := len(s.entries)
	s.mu.Unlock()

	s.notify(size)
	return id, sess
}

// With runs fn on the session under the store lock and refreshes its TTL.
func (s *Store) With(id string, fn func(sess *affinity.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.expiredLocked(e) {
		return ErrNotFound
	}
	e.lastSeen = s.now()
	return fn(e.session)
}

// Delete removes a session. Unknown ids return ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	size := len(s.entries)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.notify(size)
	return nil
}

// Len returns the number of held sessions, expired ones included until the
// next sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// DeleteExpired sweeps expired sessions and returns how many were removed.
func (s *Store) DeleteExpired() int {
	s.mu.Lock()
	removed := 0
	for id, e := range s.entries {
		if s.expiredLocked(e) {
			delete(s.entries, id)
			removed++
		}
	}
	size := len(s.entries)
	s.mu.Unlock()

	if removed > 0 {
		slog.Debug("Expired quiz sessions removed", "removed", removed, "remaining", size)
		s.notify(size)
	}
	return removed
}

func (s *Store) expiredLocked(e *entry) bool {
	return s.cfg.TTL > 0 && s.now().Sub(e.lastSeen) > s.cfg.TTL
}

func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
		slog.Warn("Session store full, evicting least recently used session", "max_sessions", s.cfg.MaxSessions)
	}
}

func (s *Store) notify(size int) {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(size)
	}
}

func (s *Store) janitor() {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.DeleteExpired()
		case <-s.stop:
			return
		}
	}
}
