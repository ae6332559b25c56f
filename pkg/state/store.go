// Package state provides an in-memory observable slot store usable as
// the local state of engine bindings.
package state

import (
	"sync"
)

type Store struct {
	mu        sync.Mutex
	values    map[string]interface{}
	observers map[string]map[int]func(interface{})
	nextID    int
}

func NewStore() *Store {
	return &Store{
		values:    map[string]interface{}{},
		observers: map[string]map[int]func(interface{}){},
	}
}

func (s *Store) Get(slot string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[slot]
	return value, ok
}

// Set is a local write, observers of slot are notified.
func (s *Store) Set(slot string, value interface{}) {
	s.Apply(slot, value)
}

// Apply stores value and calls the observers of slot, outside the store
// lock, before returning.
func (s *Store) Apply(slot string, value interface{}) {
	s.mu.Lock()
	s.values[slot] = value
	observers := make([]func(interface{}), 0, len(s.observers[slot]))
	for _, fn := range s.observers[slot] {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(value)
	}
}

func (s *Store) OnChange(slot string, fn func(value interface{})) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID += 1
	id := s.nextID
	if s.observers[slot] == nil {
		s.observers[slot] = map[int]func(interface{}){}
	}
	s.observers[slot][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers[slot], id)
		if len(s.observers[slot]) == 0 {
			delete(s.observers, slot)
		}
	}
}

// Snapshot returns a copy of every slot.
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]interface{}, len(s.values))
	for slot, value := range s.values {
		out[slot] = value
	}
	return out
}
