package session

import (
	"net/http"
	"sync"
	"time"
)

// Store is the client-side cookie store. The request pipeline reads it on every
// request; only login, refresh and logout write to it. A write error means the
// change may not outlive the process.
type Store interface {
	Get(name string) (string, bool)
	Set(c *http.Cookie) error
	Remove(names ...string) error
}

type entry struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

func (e entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

// MemoryStore keeps cookies for the life of the process and honours their expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok || e.expired(s.now()) {
		return "", false
	}
	return e.Value, true
}

// Set applies a Set-Cookie the way a browser would: an empty value or a
// non-positive Max-Age deletes the cookie.
func (s *MemoryStore) Set(c *http.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(c)
	return nil
}

func (s *MemoryStore) setLocked(c *http.Cookie) {
	if c.Value == "" || c.MaxAge < 0 {
		delete(s.entries, c.Name)
		return
	}

	e := entry{Value: c.Value}
	switch {
	case c.MaxAge > 0:
		e.Expires = s.now().Add(time.Duration(c.MaxAge) * time.Second)
	case !c.Expires.IsZero():
		if !c.Expires.After(s.now()) {
			delete(s.entries, c.Name)
			return
		}
		e.Expires = c.Expires
	}
	s.entries[c.Name] = e
}

func (s *MemoryStore) Remove(names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		delete(s.entries, name)
	}
	return nil
}

func (s *MemoryStore) snapshot() map[string]entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}
