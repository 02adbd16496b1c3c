package checkoutstate

import "sync"

// Observer is called for every applied event, while the store is locked.
type Observer func(event Event, next State)

// Store is the single source of truth for one checkout session.
type Store struct {
	sync.Mutex
	state     State
	observers []Observer
}

func NewStore(initial State) *Store {
	return &Store{
		state: initial,
	}
}

// Observe must be called before the store is shared.
func (s *Store) Observe(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Store) State() State {
	s.Lock()
	defer s.Unlock()

	return s.state.clone()
}

func (s *Store) Dispatch(events ...Event) State {
	s.Lock()
	defer s.Unlock()

	s.apply(events)

	return s.state.clone()
}

// DispatchIf applies the events only when guard holds on the current state. Checking and
// applying happen under one lock, which makes it usable as a single-flight guard.
func (s *Store) DispatchIf(guard func(State) bool, events ...Event) (State, bool) {
	s.Lock()
	defer s.Unlock()

	if !guard(s.state) {
		return s.state.clone(), false
	}

	s.apply(events)

	return s.state.clone(), true
}

func (s *Store) apply(events []Event) {
	for _, e := range events {
		s.state = Reduce(s.state, e)
		for _, o := range s.observers {
			o(e, s.state)
		}
	}
}
