package store

import "sync"

// Store is the application-wide holder of State.
type Store struct {
	mu    sync.RWMutex
	state State

	subMu sync.RWMutex
	next  int
	subs  map[int]func(State)
}

// New returns a store starting at initial. An empty Landing defaults to the
// storefront.
func New(initial State) *Store {
	if initial.Landing == "" {
		initial.Landing = ViewStorefront
	}
	return &Store{state: initial, subs: make(map[int]func(State))}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies the actions in order as one transition and notifies
// subscribers once with the resulting state.
func (s *Store) Dispatch(actions ...Action) State {
	s.mu.Lock()
	next := s.state
	for _, a := range actions {
		next = a.reduce(next)
	}
	s.state = next
	s.mu.Unlock()

	s.subMu.RLock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(next)
	}
	return next
}

// Subscribe registers fn to run after every dispatch.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}
