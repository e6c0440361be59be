package session

import "sync"

// Navigator abstracts the hosting application's notion of "where the user is"
// and "send the user somewhere else". A CLI can treat it as a prompt switch,
// a desktop shell as a view change.
type Navigator interface {
	// Location returns the current in-app path.
	Location() string
	// Navigate moves the user to the target path.
	Navigate(target string)
}

// NopNavigator ignores navigation. Used when no navigator is configured.
type NopNavigator struct{}

func (NopNavigator) Location() string { return "" }

func (NopNavigator) Navigate(target string) {}

// MemoryNavigator is a thread-safe in-memory Navigator, tracking the current
// location as plain state. Useful for tests and headless clients.
type MemoryNavigator struct {
	mu       sync.Mutex
	location string
	history  []string
}

// NewMemoryNavigator creates a navigator positioned at start.
func NewMemoryNavigator(start string) *MemoryNavigator {
	return &MemoryNavigator{location: start}
}

// Location returns the current path.
func (n *MemoryNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Navigate records the move and updates the current path.
func (n *MemoryNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = target
	n.history = append(n.history, target)
}

// History returns all navigations performed, oldest first.
func (n *MemoryNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.history))
	copy(out, n.history)
	return out
}
