package session

import (
	"context"
	"encoding/json"
	"sync"
)

// MemStore is an in-memory Store for tests and ephemeral processes.
// It keeps the same serialized-summary representation as FileStore so the
// corrupt-summary path behaves identically.
type MemStore struct {
	mu       sync.Mutex
	token    string
	user     string
	userRole string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Write persists token and user summary together.
func (s *MemStore) Write(ctx context.Context, token string, user *User) error {
	raw := ""
	role := ""
	if user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return err
		}
		raw = string(b)
		role = user.Role
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = raw
	s.userRole = role
	return nil
}

// Read returns the stored token, or an empty string when absent.
func (s *MemStore) Read(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// ReadUser returns the stored user summary, clearing the store on a corrupt
// payload.
func (s *MemStore) ReadUser(ctx context.Context) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || s.user == "" {
		return nil, nil
	}

	user := &User{}
	if err := json.Unmarshal([]byte(s.user), user); err != nil {
		s.token = ""
		s.user = ""
		s.userRole = ""
		return nil, nil
	}
	return user, nil
}

// Clear removes all session fields.
func (s *MemStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = ""
	s.userRole = ""
	return nil
}

// SetRaw overwrites the serialized fields directly, bypassing Write's
// consistency. Intended for tests exercising corrupt or partial states.
func (s *MemStore) SetRaw(token, user, userRole string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.userRole = userRole
}
