// Package profile keeps per-identity planner and favorites state and merges a
// guest's state into the authenticated user's on login.
package profile

import (
	"sync"

	"github.com/starstrip/starstrip-planner/internal/events"
)

// KeyResolver returns the active profile key.
type KeyResolver func() string

// ChangeHook observes writes. It runs outside the partition lock.
type ChangeHook[T any] func(key string, value T)

// Partitions maps profile keys to state of type T. Reads and writes always go
// through the key resolved at the moment they execute, so a write issued right
// after an identity change lands in the new partition.
type Partitions[T any] struct {
	mu       sync.RWMutex
	resolve  KeyResolver
	empty    func() T
	clone    func(T) T
	profiles map[string]T
	current  T
	hooks    []ChangeHook[T]
}

// NewPartitions creates an empty table.
func NewPartitions[T any](resolve KeyResolver, empty func() T, clone func(T) T) *Partitions[T] {
	return &Partitions[T]{
		resolve:  resolve,
		empty:    empty,
		clone:    clone,
		profiles: make(map[string]T),
		current:  empty(),
	}
}

// Bind refreshes the current view on every identity change.
func (p *Partitions[T]) Bind(bus *events.Bus) func() {
	return bus.Subscribe(func(evt events.Event) {
		if evt.Kind == events.IdentityChanged {
			p.Refresh()
		}
	})
}

// OnChange registers a hook called after every Write, Put and Delete.
func (p *Partitions[T]) OnChange(h ChangeHook[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, h)
}

// ActiveKey returns the key reads and writes currently resolve to.
func (p *Partitions[T]) ActiveKey() string { return p.resolve() }

// Read returns the partition at the active key, or the empty value. It never
// creates an entry.
func (p *Partitions[T]) Read() T {
	key := p.resolve()
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.profiles[key]; ok {
		return p.clone(v)
	}
	return p.empty()
}

// Current returns the cached view of the active partition.
func (p *Partitions[T]) Current() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clone(p.current)
}

// Get returns the partition stored at key.
func (p *Partitions[T]) Get(key string) (T, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.profiles[key]
	if !ok {
		var zero T
		return zero, false
	}
	return p.clone(v), true
}

// Write applies mutate to a copy of the active partition and stores the result.
func (p *Partitions[T]) Write(mutate func(T) T) T {
	p.mu.Lock()
	key := p.resolve()
	base, ok := p.profiles[key]
	if ok {
		base = p.clone(base)
	} else {
		base = p.empty()
	}
	next := mutate(base)
	p.profiles[key] = next
	p.current = next
	hooks := append([]ChangeHook[T](nil), p.hooks...)
	p.mu.Unlock()

	p.notify(hooks, key, next)
	return p.clone(next)
}

// Put stores v at key, refreshing the current view when key is active.
func (p *Partitions[T]) Put(key string, v T) {
	active := p.resolve()
	p.mu.Lock()
	p.profiles[key] = p.clone(v)
	if key == active {
		p.current = p.clone(v)
	}
	hooks := append([]ChangeHook[T](nil), p.hooks...)
	p.mu.Unlock()

	p.notify(hooks, key, v)
}

// Delete removes the partition at key.
func (p *Partitions[T]) Delete(key string) {
	active := p.resolve()
	p.mu.Lock()
	delete(p.profiles, key)
	if key == active {
		p.current = p.empty()
	}
	hooks := append([]ChangeHook[T](nil), p.hooks...)
	p.mu.Unlock()

	p.notify(hooks, key, p.empty())
}

// Refresh re-derives the current view from the active key.
func (p *Partitions[T]) Refresh() {
	key := p.resolve()
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.profiles[key]; ok {
		p.current = p.clone(v)
	} else {
		p.current = p.empty()
	}
}

// Profiles returns a copy of the whole table.
func (p *Partitions[T]) Profiles() map[string]T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]T, len(p.profiles))
	for k, v := range p.profiles {
		out[k] = p.clone(v)
	}
	return out
}

// Replace swaps in a loaded table without firing hooks.
func (p *Partitions[T]) Replace(profiles map[string]T) {
	next := make(map[string]T, len(profiles))
	for k, v := range profiles {
		next[k] = p.clone(v)
	}
	p.mu.Lock()
	p.profiles = next
	p.mu.Unlock()
	p.Refresh()
}

func (p *Partitions[T]) notify(hooks []ChangeHook[T], key string, v T) {
	for _, h := range hooks {
		h(key, p.clone(v))
	}
}
