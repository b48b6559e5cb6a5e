package levelbook

import "sync"

// PublishLevel is an interface for publishing level updates.
//
// IMPORTANT: Implementations must either:
//  1. Process updates synchronously before returning, OR
//  2. Clone the LevelUpdate data before returning
//
// The caller recycles LevelUpdate objects to a sync.Pool after Publish returns,
// so any asynchronous processing must work with cloned data.
type PublishLevel interface {
	Publish(...*LevelUpdate)
}

// MemoryPublishLevel stores updates in memory, useful for testing.
type MemoryPublishLevel struct {
	mu      sync.RWMutex
	Updates []*LevelUpdate
}

// NewMemoryPublishLevel creates a new MemoryPublishLevel.
func NewMemoryPublishLevel() *MemoryPublishLevel {
	return &MemoryPublishLevel{
		Updates: make([]*LevelUpdate, 0),
	}
}

// Publish appends copies of the updates to the in-memory slice.
func (m *MemoryPublishLevel) Publish(updates ...*LevelUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		cpy := new(LevelUpdate)
		*cpy = *u
		m.Updates = append(m.Updates, cpy)
	}
}

// Count returns the number of updates stored.
func (m *MemoryPublishLevel) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Updates)
}

// Get returns the update at the specified index.
func (m *MemoryPublishLevel) Get(index int) *LevelUpdate {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.Updates[index]
}

// Logs returns a copy of all updates stored.
func (m *MemoryPublishLevel) Logs() []*LevelUpdate {
	m.mu.RLock()
	defer m.mu.RUnlock()

	updates := make([]*LevelUpdate, len(m.Updates))
	copy(updates, m.Updates)
	return updates
}

// DiscardPublishLevel discards all updates, useful for benchmarking.
type DiscardPublishLevel struct {
}

// NewDiscardPublishLevel creates a new DiscardPublishLevel.
func NewDiscardPublishLevel() *DiscardPublishLevel {
	return &DiscardPublishLevel{}
}

// Publish does nothing.
func (p *DiscardPublishLevel) Publish(updates ...*LevelUpdate) {

}
