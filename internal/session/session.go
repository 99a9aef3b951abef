// Package session holds the bearer token for the lifetime of the process.
package session

import "sync"

// Listener is notified after every state transition.
type Listener func(authenticated bool)

// Store holds the current bearer token. An empty token means unauthenticated.
// Only Store methods write the token.
type Store struct {
	mu       sync.RWMutex
	token    string
	listener Listener
}

// New returns an unauthenticated store.
func New() *Store {
	return &Store{}
}

// OnChange registers a listener for Authenticated/Unauthenticated transitions.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// SetToken installs a token. Empty values are refused and leave the store unchanged.
func (s *Store) SetToken(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	was := s.token != ""
	s.token = token
	l := s.listener
	s.mu.Unlock()

	if !was && l != nil {
		l(true)
	}
	return true
}

// Clear drops the token. Clearing an empty store is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	was := s.token != ""
	s.token = ""
	l := s.listener
	s.mu.Unlock()

	if was && l != nil {
		l(false)
	}
}

// Token returns the current token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated is true iff a non-empty token is held.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}
