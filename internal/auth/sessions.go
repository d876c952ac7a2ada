package auth

import "sync"

// Sessions holds per-user logout callbacks. Dashboard listeners register
// here so that logging out tears them down.
type Sessions struct {
	mu        sync.Mutex
	callbacks map[string]map[string]func()
}

func NewSessions() *Sessions {
	return &Sessions{callbacks: make(map[string]map[string]func())}
}

// RegisterLogoutCallback stores fn under key for userID, replacing any
// callback registered under the same key.
func (s *Sessions) RegisterLogoutCallback(userID, key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callbacks[userID] == nil {
		s.callbacks[userID] = make(map[string]func())
	}
	s.callbacks[userID][key] = fn
}

func (s *Sessions) Forget(userID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.callbacks[userID], key)
}

// Logout runs and clears every callback for userID. It returns how many ran.
func (s *Sessions) Logout(userID string) int {
	s.mu.Lock()
	fns := s.callbacks[userID]
	delete(s.callbacks, userID)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
