package supabase

import (
	"sync"

	"tailor-gallery-backend/internal/models"
)

// AuthStream fans auth-state notifications out to every registered listener.
// A nil admin means signed out. Listeners run synchronously on the publishing
// goroutine, in the order they subscribed.
type AuthStream struct {
	mu        sync.Mutex
	nextID    int
	listeners []authListener
}

type authListener struct {
	id int
	fn func(*models.Admin)
}

func NewAuthStream() *AuthStream {
	return &AuthStream{}
}

// Subscribe registers fn and returns the function that removes it. The
// returned function is safe to call more than once.
func (s *AuthStream) Subscribe(fn func(*models.Admin)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, authListener{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *AuthStream) Publish(admin *models.Admin) {
	s.mu.Lock()
	listeners := make([]authListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(admin)
	}
}

// Len returns the number of active listeners.
func (s *AuthStream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
