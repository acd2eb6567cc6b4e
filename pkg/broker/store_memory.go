package broker

import (
	"sync"
	"time"
)

// NewMemoryHandshakeStore returns an in-process HandshakeStore. Entries are
// dropped after ttl; a ttl of zero disables expiry.
func NewMemoryHandshakeStore(ttl time.Duration) HandshakeStore {
	return newMemoryStore[*PendingHandshake](ttl)
}

// NewMemoryCredentialStore returns an in-process CredentialStore. Entries are
// dropped after ttl; a ttl of zero disables expiry.
func NewMemoryCredentialStore(ttl time.Duration) CredentialStore {
	return newMemoryStore[*AccessCredential](ttl)
}

type memoryEntry[T any] struct {
	value    T
	deadline time.Time
}

// memoryStore is a mutex-guarded map with per-entry deadlines. Take is the
// only read and always deletes, which is what enforces the single-use
// property of both stores. A sweeper drops entries whose deadline passed
// without anyone taking them, so abandoned flows do not accumulate for the
// lifetime of the process.
type memoryStore[T any] struct {
	mu      sync.Mutex
	entries map[string]memoryEntry[T]
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

func newMemoryStore[T any](ttl time.Duration) *memoryStore[T] {
	s := &memoryStore[T]{
		entries: make(map[string]memoryEntry[T]),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	if ttl > 0 {
		go s.sweep()
	}
	return s
}

func (s *memoryStore[T]) Save(key string, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry[T]{value: value}
	if s.ttl > 0 {
		entry.deadline = time.Now().Add(s.ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *memoryStore[T]) Take(key string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	entry, ok := s.entries[key]
	if !ok {
		return zero, ErrNotFound
	}
	delete(s.entries, key)
	if !entry.deadline.IsZero() && time.Now().After(entry.deadline) {
		return zero, ErrNotFound
	}
	return entry.value, nil
}

func (s *memoryStore[T]) sweep() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, entry := range s.entries {
				if now.After(entry.deadline) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Close stops the sweeper. Safe to call more than once.
func (s *memoryStore[T]) Close() {
	s.once.Do(func() { close(s.done) })
}
