package cache

import (
	"context"
	"sync"
	"time"

	"dudas-espanol/internal/model"
)

type memoryEntry struct {
	turns    []model.Turn
	lastSeen time.Time
}

// MemoryHistory is the single-process HistoryStore. Sessions idle longer than
// ttl are dropped on the next write.
type MemoryHistory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*memoryEntry
}

func NewMemoryHistory(ttl time.Duration) *MemoryHistory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryHistory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

func (m *MemoryHistory) Append(_ context.Context, sessionID string, turn model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictExpired(now)

	entry, ok := m.entries[sessionID]
	if !ok {
		entry = &memoryEntry{turns: make([]model.Turn, 0, 16)}
		m.entries[sessionID] = entry
	}
	entry.turns = append(entry.turns, turn)
	entry.lastSeen = now
	return nil
}

func (m *MemoryHistory) List(_ context.Context, sessionID string) ([]model.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[sessionID]
	if !ok || m.expired(entry, m.now()) {
		return []model.Turn{}, nil
	}

	copied := make([]model.Turn, len(entry.turns))
	copy(copied, entry.turns)
	return copied, nil
}

func (m *MemoryHistory) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.entries, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryHistory) Ping(context.Context) error {
	return nil
}

// Len reports live sessions; used by health output.
func (m *MemoryHistory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, entry := range m.entries {
		if !m.expired(entry, now) {
			n++
		}
	}
	return n
}

func (m *MemoryHistory) expired(entry *memoryEntry, now time.Time) bool {
	return now.Sub(entry.lastSeen) > m.ttl
}

// caller holds m.mu
func (m *MemoryHistory) evictExpired(now time.Time) {
	for id, entry := range m.entries {
		if m.expired(entry, now) {
			delete(m.entries, id)
		}
	}
}
