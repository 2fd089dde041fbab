package payment

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// Store keeps in-flight payment attempts in memory, keyed by reference.
// Attempts are session-scoped: they are created on submit and removed
// once a terminal outcome has been reported to the viewer.  Nothing here
// is persisted; an approved payment leaves its durable trace as a ticket
// row, not as an attempt.
type Store struct {
	mu       sync.RWMutex
	attempts map[string]*Attempt
}

// NewStore returns an empty attempt store.
func NewStore() *Store {
	return &Store{attempts: make(map[string]*Attempt)}
}

// NewReference generates an opaque attempt reference used to correlate
// the gateway redirect with the in-memory attempt.
func NewReference() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Put registers an attempt under its reference.
func (s *Store) Put(a *Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[a.Reference] = a
}

// PutIfNoPending registers the attempt unless its viewer already has a
// non-terminal attempt for the same event.  Check and insert happen
// under one lock so two racing submissions cannot both pass the
// one-in-flight guard.
func (s *Store) PutIfNoPending(a *Attempt) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.attempts {
		if b.UserID == a.UserID && b.EventID == a.EventID && !b.Terminal() {
			return false
		}
	}
	s.attempts[a.Reference] = a
	return true
}

// Get returns the attempt for a reference, or nil when none exists.
func (s *Store) Get(ref string) *Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempts[ref]
}

// Remove discards an attempt.  Handlers call this after a terminal
// outcome has been observed by the viewer.
func (s *Store) Remove(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, ref)
}

// PendingForViewer reports whether the viewer already has a non-terminal
// attempt for the event.  Submissions are de-duplicated against it so a
// second tap while one is in flight is ignored rather than queued.
func (s *Store) PendingForViewer(userID, eventID uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.attempts {
		if a.UserID == userID && a.EventID == eventID && !a.Terminal() {
			return true
		}
	}
	return false
}
