package lambda

import (
	"context"
	"io"
	"sync"
	"time"
)

// staleAfter is how long a warm container may sit idle before IsHealthy
// reports it stale
const staleAfter = 5 * time.Minute

// ConnectionManager keeps one set of resources (store, services, router)
// alive across warm invocations of a Lambda container
type ConnectionManager[T io.Closer] struct {
	init        func(ctx context.Context) (T, error)
	container   T
	lastUsed    time.Time
	mu          sync.RWMutex
	initialized bool
}

// NewConnectionManager creates a manager that builds its container with init
// on first use
func NewConnectionManager[T io.Closer](init func(ctx context.Context) (T, error)) *ConnectionManager[T] {
	return &ConnectionManager[T]{init: init}
}

// GetContainer returns the container, initializing it if necessary. A failed
// initialization is retried on the next call.
func (cm *ConnectionManager[T]) GetContainer(ctx context.Context) (T, error) {
	cm.mu.RLock()
	if cm.initialized {
		container := cm.container
		cm.mu.RUnlock()
		cm.UpdateLastUsed()
		return container, nil
	}
	cm.mu.RUnlock()

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.initialized {
		cm.lastUsed = time.Now()
		return cm.container, nil
	}

	container, err := cm.init(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	cm.container = container
	cm.lastUsed = time.Now()
	cm.initialized = true
	return container, nil
}

// IsHealthy checks if the connection manager holds a recently used container
func (cm *ConnectionManager[T]) IsHealthy() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if !cm.initialized {
		return false
	}

	return time.Since(cm.lastUsed) < staleAfter
}

// Cleanup closes the container; the next GetContainer builds a new one
func (cm *ConnectionManager[T]) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.initialized {
		return nil
	}

	err := cm.container.Close()
	var zero T
	cm.container = zero
	cm.initialized = false
	return err
}

// UpdateLastUsed updates the last used timestamp
func (cm *ConnectionManager[T]) UpdateLastUsed() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.lastUsed = time.Now()
}
