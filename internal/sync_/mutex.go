package sync_

import "sync"

// RWMutexed holds a value that is only accessed with its lock held.
type RWMutexed[T any] struct {
	mu    sync.RWMutex
	value T
}

func NewRWMutexed[T any](value T) *RWMutexed[T] {
	return &RWMutexed[T]{value: value}
}

// Get returns a copy of the inner value.
func (m *RWMutexed[T]) Get() T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

// Update modifies the inner value in place with the write lock held, returning the values before and after.
func (m *RWMutexed[T]) Update(f func(*T)) (old T, updated T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old = m.value
	f(&m.value)
	return old, m.value
}
