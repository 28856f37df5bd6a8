package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	response StoredResponse
	expires  time.Time
}

// MemoryStore keeps responses in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates MemoryStore whose entries live for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*StoredResponse, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.ttl > 0 && !s.now().Before(entry.expires) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, nil
	}
	resp := entry.response
	resp.Body = append([]byte(nil), entry.response.Body...)
	return &resp, nil
}

// Save keeps the first response stored for key.
func (s *MemoryStore) Save(_ context.Context, key string, response StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.items[key]; ok && (s.ttl <= 0 || s.now().Before(existing.expires)) {
		return nil
	}
	response.Body = append([]byte(nil), response.Body...)
	s.items[key] = memoryEntry{response: response, expires: s.now().Add(s.ttl)}
	return nil
}
