package session

import (
	"sort"
	"sync"
	"time"
)

// Info describes a running session.
type Info struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Remote    string    `json:"remote"`
	StartedAt time.Time `json:"started_at"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
}

// Registry tracks running sessions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Info)}
}

// Add records info. The returned func removes it again.
func (r *Registry) Add(info Info) (remove func()) {
	r.mu.Lock()
	r.sessions[info.ID] = info
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.sessions, info.ID)
			r.mu.Unlock()
		})
	}
}

// Resize updates the recorded terminal size of a session.
func (r *Registry) Resize(id string, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.sessions[id]; ok {
		info.Width, info.Height = width, height
		r.sessions[id] = info
	}
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.sessions[id]
	return info, ok
}

// Len returns the number of running sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns running sessions, oldest first. A non-empty user limits the
// result to that user's sessions.
func (r *Registry) List(user string) []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.sessions))
	for _, info := range r.sessions {
		if user != "" && info.User != user {
			continue
		}
		out = append(out, info)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
