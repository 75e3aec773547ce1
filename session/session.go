// Package session keeps per-visitor dashboard state in memory.
package session

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notice levels shown to the user after an action.
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notice is a one-shot message displayed on the next page render.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// State is everything the dashboard remembers about one visitor.
// The zero value is a logged-out session with no sitemap URLs and the
// automatic scan path selected.
type State struct {
	ID          string
	LoggedIn    bool
	Email       string
	SeedURL     string
	SitemapURLs []string
	UseManual   bool
	Notice      *Notice
	ExpiresAt   time.Time
}

// Login marks the session authenticated.
func (s *State) Login(email string) {
	s.LoggedIn = true
	s.Email = email
}

// ApplyScan records a successful scan. An insufficient scan keeps the
// previous URLs and switches to manual entry.
func (s *State) ApplyScan(seed string, candidates []string, insufficient bool) {
	s.SeedURL = seed
	if insufficient {
		s.UseManual = true
		return
	}
	s.SitemapURLs = slices.Clone(candidates)
	s.UseManual = false
}

// ApplyScanError records a failed scan and switches to manual entry.
func (s *State) ApplyScanError(seed string) {
	s.SeedURL = seed
	s.UseManual = true
}

// ApplyManual replaces the sitemap URLs with a manual list.
func (s *State) ApplyManual(urls []string) {
	s.SitemapURLs = slices.Clone(urls)
}

// Flash sets the notice for the next render.
func (s *State) Flash(level, message string) {
	s.Notice = &Notice{Level: level, Message: message}
}

func (s *State) clone() State {
	c := *s
	c.SitemapURLs = slices.Clone(s.SitemapURLs)
	if s.Notice != nil {
		n := *s.Notice
		c.Notice = &n
	}
	return c
}

// Store is an in-memory session store with sliding expiry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store whose sessions expire ttl after their last use.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*State),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new logged-out session.
func (s *Store) Create() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	st := &State{
		ID:        uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.sessions[st.ID] = st
	return st.clone()
}

// Get returns a copy of the session and extends its expiry.
func (s *Store) Get(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.liveLocked(id)
	if !ok {
		return State{}, false
	}
	st.ExpiresAt = s.now().Add(s.ttl)
	return st.clone(), true
}

// Update applies fn to the session under the store lock and returns the
// resulting copy.
func (s *Store) Update(id string, fn func(*State)) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.liveLocked(id)
	if !ok {
		return State{}, false
	}
	fn(st)
	st.ID = id
	st.ExpiresAt = s.now().Add(s.ttl)
	return st.clone(), true
}

// TakeNotice returns and clears the pending notice.
func (s *Store) TakeNotice(id string) *Notice {
	var notice *Notice
	s.Update(id, func(st *State) {
		notice = st.Notice
		st.Notice = nil
	})
	return notice
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// SetTTL changes the expiry applied from the next use of each session.
func (s *Store) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.sessions)
}

func (s *Store) liveLocked(id string) (*State, bool) {
	st, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(st.ExpiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	return st, true
}

// sweepLocked drops expired sessions.
func (s *Store) sweepLocked() {
	now := s.now()
	for id, st := range s.sessions {
		if !now.Before(st.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}
