package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoSize is used when a non-positive size is given to NewMemo.
const DefaultMemoSize = 1024

// Memo memoizes computed values for a single generation of the underlying data.
// Reset drops every entry and starts a new generation.
type Memo[K comparable, V any] struct {
	mu         sync.Mutex
	entries    *lru.Cache[K, V]
	generation uint64
}

// NewMemo returns a memo bounded to size entries.
func NewMemo[K comparable, V any](size int) *Memo[K, V] {
	if size <= 0 {
		size = DefaultMemoSize
	}

	entries, err := lru.New[K, V](size)
	if err != nil {
		// only errors on non-positive size
		panic(err)
	}

	return &Memo[K, V]{
		entries: entries,
	}
}

// GetOrCompute returns the memoized value for key if present for the given generation.
// Otherwise it calls compute and memoizes the result on success.
// Values computed for a stale generation are returned but never stored.
func (m *Memo[K, V]) GetOrCompute(generation uint64, key K, compute func() (V, error)) (V, bool, error) {
	m.mu.Lock()
	if m.generation == generation {
		if value, ok := m.entries.Get(key); ok {
			m.mu.Unlock()
			return value, true, nil
		}
	}
	m.mu.Unlock()

	value, err := compute()
	if err != nil {
		var zero V
		return zero, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation == generation {
		// another caller may have raced us; keep the first stored value
		if existing, ok := m.entries.Get(key); ok {
			return existing, true, nil
		}
		m.entries.Add(key, value)
	}

	return value, false, nil
}

// Reset purges the memo and moves it to the given generation.
func (m *Memo[K, V]) Reset(generation uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries.Purge()
	m.generation = generation
}

// Generation returns the current generation.
func (m *Memo[K, V]) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.generation
}

// Len returns the number of memoized entries.
func (m *Memo[K, V]) Len() int {
	return m.entries.Len()
}
