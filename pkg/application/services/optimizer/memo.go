package optimizer

import (
	"sync"
	"sync/atomic"

	"github.com/vsinha/workforce/pkg/application/dto"
)

// memoTable caches solved subproblems for a single run. Entries are only ever added.
// The map grows with the states actually solved; the horizon times the peak minimum
// is only an upper bound and can be far larger.
type memoTable struct {
	entries map[dto.MemoKey]dto.MemoEntry
	mutex   sync.RWMutex

	hits   atomic.Int64
	misses atomic.Int64
}

func newMemoTable() *memoTable {
	return &memoTable{
		entries: make(map[dto.MemoKey]dto.MemoEntry),
	}
}

func (m *memoTable) get(key dto.MemoKey) (dto.MemoEntry, bool) {
	m.mutex.RLock()
	entry, exists := m.entries[key]
	m.mutex.RUnlock()

	if exists {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return entry, exists
}

func (m *memoTable) put(key dto.MemoKey, entry dto.MemoEntry) {
	m.mutex.Lock()
	m.entries[key] = entry
	m.mutex.Unlock()
}

func (m *memoTable) len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.entries)
}
