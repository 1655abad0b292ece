package store

import (
	"sync"

	"habittracker/internal/model"
)

// Listener receives the committed snapshot after every successful dispatch.
type Listener func(model.HabitCollection)

type subscription struct {
	id int
	fn Listener
}

// Store owns the habit collection. All mutation goes through Dispatch.
//
// Dispatches are serialized: at most one transition is in flight, and its
// listeners run (in registration order) before the next one starts.
// Listeners must not call Dispatch.
type Store struct {
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     model.HabitCollection
	listeners []subscription
	nextSub   int

	ids IDSource
}

type Option func(*Store)

// WithIDSource replaces the default sequential id minting.
func WithIDSource(ids IDSource) Option {
	return func(s *Store) { s.ids = ids }
}

// New creates a store holding initial.
func New(initial model.HabitCollection, opts ...Option) *Store {
	s := &Store{state: initial}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewSequenceIDs(initial)
	}
	return s
}

// NewSeeded creates a store holding the five sample habits.
func NewSeeded(opts ...Option) *Store {
	return New(Seed(), opts...)
}

func (s *Store) GetState() model.HabitCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies action, commits the result and notifies listeners.
// On error nothing is committed and no listener runs.
func (s *Store) Dispatch(action model.Action) (model.HabitCollection, error) {
	_, next, err := s.Transition(action)
	return next, err
}

// Transition is Dispatch that also returns the snapshot action was applied
// to. Both snapshots are taken under the dispatch lock, so before is exactly
// the state the action saw. On error after equals before.
func (s *Store) Transition(action model.Action) (before, after model.HabitCollection, err error) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	before = s.GetState()
	next, err := Reduce(before, action, s.ids)
	if err != nil {
		return before, before, err
	}

	s.mu.Lock()
	s.state = next
	listeners := make([]subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(next)
	}
	return before, next, nil
}

// Subscribe registers fn and returns a func that removes it.
// Calling the returned func more than once is harmless.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
