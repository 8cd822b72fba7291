package auth

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Slot is the durable key-value area one device's session lives in.
type Slot interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// SetAll writes every pair or none. A zero ttl never expires.
	SetAll(ctx context.Context, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SlotStore hands out the slot belonging to a device.
type SlotStore interface {
	Slot(device string) Slot
}

// MemorySlots keeps slots in process memory. Used in tests and when redis is
// not reachable at startup.
type MemorySlots struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	now    func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{
		values: make(map[string]memoryEntry),
		now:    time.Now,
	}
}

func (m *MemorySlots) Slot(device string) Slot {
	return &memorySlot{store: m, device: device}
}

type memorySlot struct {
	store  *MemorySlots
	device string
}

func (s *memorySlot) key(k string) string {
	return slotKey(s.device, k)
}

func (s *memorySlot) Get(_ context.Context, key string) (string, bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	e, ok := s.store.values[s.key(key)]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !s.store.now().Before(e.expiresAt) {
		delete(s.store.values, s.key(key))
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *memorySlot) SetAll(_ context.Context, values map[string]string, ttl time.Duration) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.store.now().Add(ttl)
	}
	for k, v := range values {
		s.store.values[s.key(k)] = memoryEntry{value: v, expiresAt: expiresAt}
	}
	return nil
}

func (s *memorySlot) Delete(_ context.Context, keys ...string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, k := range keys {
		delete(s.store.values, s.key(k))
	}
	return nil
}

func slotKey(device, key string) string {
	return "kodbank:" + device + ":" + key
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
