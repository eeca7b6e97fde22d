package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cache is the read-through cache used in front of derived balance reads.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	// SetIfGeneration stores data only if Invalidate has not run since gen
	// was returned by Generation.
	SetIfGeneration(key string, data T, gen uint64) bool
	Generation() uint64
	Delete(key string)
	Size() int
	Invalidate()
}

var _ Cache[int] = (*LRUCache[int])(nil)

// Cleaner drops expired entries and reports how many went.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps expired entries out of registered caches so idle keys do
// not hold memory until their next read.
type Manager struct {
	mu     sync.Mutex
	caches map[string]Cleaner

	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

func NewManager() *Manager {
	return &Manager{
		caches: make(map[string]Cleaner),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds a cache under name; a second registration replaces it.
func (m *Manager) Register(name string, c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = c
}

// StartCleanup sweeps every interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	go m.loop(interval)
}

func (m *Manager) loop(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}

// Sweep removes expired entries from every cache and returns the total.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for name, c := range m.caches {
		if n := c.CleanExpired(); n > 0 {
			slog.Debug("Expired cache entries removed", "component", "cache", "cache", name, "count", n)
			total += n
		}
	}
	return total
}

// Stop ends the sweep loop and waits for it. Safe to call more than once
// and before StartCleanup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.done
		}
	})
}
