package session

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrSessionClosed = errors.New("session closed")

// Session is one outbound channel to a connected peer. Implementations must
// be comparable (pointer types are) and safe for concurrent use.
type Session interface {
	ID() string
	IsOpen() bool
	Send(frame string) error
}

// Registry holds the set of connected sessions
type Registry struct {
	sessions map[Session]struct{}
	mu       sync.RWMutex
	log      logrus.FieldLogger
}

// NewRegistry creates an empty registry
func NewRegistry(log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		sessions: make(map[Session]struct{}),
		log:      log,
	}
}

// Add registers s. It reports false if s was already present.
func (r *Registry) Add(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s]; exists {
		return false
	}
	r.sessions[s] = struct{}{}
	return true
}

// Remove unregisters s. It reports false if s was not present.
func (r *Registry) Remove(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s]; !exists {
		return false
	}
	delete(r.sessions, s)
	return true
}

// List returns a snapshot of the registered sessions
func (r *Registry) List() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Session, 0, len(r.sessions))
	for s := range r.sessions {
		result = append(result, s)
	}
	return result
}

// Count returns the number of registered sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Visit calls fn for every open session in a snapshot of the registry.
// Closed sessions are skipped but stay registered until removed.
func (r *Registry) Visit(fn func(Session)) {
	for _, s := range r.List() {
		if !s.IsOpen() {
			continue
		}
		fn(s)
	}
}

// Broadcast sends frame to every open session and returns how many accepted
// it. A failed send is logged and does not stop delivery to the others.
func (r *Registry) Broadcast(frame string) int {
	delivered := 0
	r.Visit(func(s Session) {
		if err := s.Send(frame); err != nil {
			r.log.WithError(err).WithField("session", s.ID()).Debug("Failed to deliver frame")
			return
		}
		delivered++
	})
	return delivered
}
