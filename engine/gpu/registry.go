package gpu

import (
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Registry is a concurrency-safe table owning all live objects of one kind.
// Handles are issued from a monotonically increasing counter and are never
// reused, so a taken handle stays dead for the lifetime of the registry.
//
// Dereferencing a dead or zero handle is a caller contract violation, not a
// recoverable runtime state: Get, Write and Take panic on it.
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[Handle[T]]*T
	next  uint32
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[Handle[T]]*T),
	}
}

// Register inserts value and returns a fresh handle, never previously issued
// by this registry.
func (r *Registry[T]) Register(value *T) Handle[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	h := Handle[T](r.next)
	r.items[h] = value
	return h
}

// Get returns the slot's object. The pointer outlives the table lock, so Get
// is only safe for fields that are immutable after registration or guarded by
// the object's own mutex. A read that must exclude a concurrent Write for its
// duration goes through Read instead.
func (r *Registry[T]) Get(h Handle[T]) *T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.items[h]
	if !ok {
		panic(fmt.Sprintf("gpu: dereference of dead %T handle %d", *new(T), h))
	}
	return value
}

// Read runs fn with shared access to the slot, holding the read lock for the
// duration of fn. Concurrent Write calls on this registry are excluded until
// fn returns.
func (r *Registry[T]) Read(h Handle[T], fn func(*T)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.items[h]
	if !ok {
		panic(fmt.Sprintf("gpu: dereference of dead %T handle %d", *new(T), h))
	}
	fn(value)
}

// Write runs fn with exclusive access to the slot. The table lock is held
// for the duration of fn, blocking all other accessors of this registry.
func (r *Registry[T]) Write(h Handle[T], fn func(*T) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.items[h]
	if !ok {
		panic(fmt.Sprintf("gpu: dereference of dead %T handle %d", *new(T), h))
	}
	return fn(value)
}

// Take removes the slot and transfers ownership of its value to the caller.
// The handle is dead afterwards.
func (r *Registry[T]) Take(h Handle[T]) *T {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.items[h]
	if !ok {
		panic(fmt.Sprintf("gpu: take of dead %T handle %d", *new(T), h))
	}
	delete(r.items, h)
	return value
}

// Contains reports whether the handle names a live slot.
func (r *Registry[T]) Contains(h Handle[T]) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[h]
	return ok
}

// Len returns the number of live slots.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// Handles returns a sorted snapshot of the live handles.
func (r *Registry[T]) Handles() []Handle[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := maps.Keys(r.items)
	slices.Sort(handles)
	return handles
}
