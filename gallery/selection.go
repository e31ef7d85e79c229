package gallery

import "sync"

// NoSelection is the Selection value when nothing is selected.
const NoSelection = -1

// Selection is an observable index into the collection. It carries no
// invariants beyond notifying subscribers of each change.
type Selection struct {
	mu     sync.Mutex
	value  int
	nextID int
	subs   map[int]func(int)
}

// NewSelection returns a Selection with nothing selected.
func NewSelection() *Selection {
	return &Selection{value: NoSelection, subs: make(map[int]func(int))}
}

// Value returns the selected index.
func (s *Selection) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set changes the selected index and notifies subscribers if it changed.
func (s *Selection) Set(v int) {
	s.mu.Lock()
	if s.value == v {
		s.mu.Unlock()
		return
	}
	s.value = v
	subs := make([]func(int), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn for future changes and returns a function that
// removes it.
func (s *Selection) Subscribe(fn func(int)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
