package sessions

import "sync"

// Registry tracks live sessions by connection id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*ChatSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*ChatSession)}
}

func (r *Registry) Add(s *ChatSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

func (r *Registry) Get(id string) (*ChatSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
