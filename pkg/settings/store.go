package settings

import "sync"

// Store holds the current settings and notifies subscribers on change.
type Store struct {
	mu        sync.RWMutex
	current   Settings
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Settings)
}

// NewStore creates a store holding initial.
func NewStore(initial Settings) *Store {
	return &Store{current: initial.clone()}
}

// Get returns a copy of the current settings.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current.clone()
}

// Set validates and installs s, then calls every subscriber synchronously in
// registration order. Invalid settings are rejected and nobody is notified.
func (st *Store) Set(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	st.mu.Lock()
	st.current = s.clone()
	listeners := append([]listener(nil), st.listeners...)
	st.mu.Unlock()

	for _, l := range listeners {
		l.fn(s.clone())
	}
	return nil
}

// Update applies fn to a copy of the current settings and installs the result.
func (st *Store) Update(fn func(*Settings)) error {
	s := st.Get()
	fn(&s)
	return st.Set(s)
}

// Subscribe registers fn for future changes. The returned function removes
// the registration and is safe to call more than once.
func (st *Store) Subscribe(fn func(Settings)) (unsubscribe func()) {
	st.mu.Lock()
	id := st.nextID
	st.nextID++
	st.listeners = append(st.listeners, listener{id: id, fn: fn})
	st.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			st.mu.Lock()
			defer st.mu.Unlock()
			for i, l := range st.listeners {
				if l.id == id {
					st.listeners = append(st.listeners[:i:i], st.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
