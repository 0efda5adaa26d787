package draft

import (
	"log/slog"
	"sync"
	"time"

	"quill/internal/domain"
	"quill/internal/domain/generation"
)

// Registry holds the live sessions. Sessions are in-memory only and do
// not survive a restart; idle ones are swept after the TTL so abandoned
// browser tabs don't pin their state forever.
type Registry struct {
	gen    generation.Service
	opts   Options
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*registryEntry

	stop     chan struct{}
	stopOnce sync.Once
}

type registryEntry struct {
	session    *Session
	lastAccess time.Time
}

// NewRegistry creates a registry and starts its background sweeper.
// Callers must Close it to stop the sweeper.
func NewRegistry(gen generation.Service, opts Options, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	r := &Registry{
		gen:      gen,
		opts:     opts,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*registryEntry),
		stop:     make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Create adds a new empty session and returns it.
func (r *Registry) Create() *Session {
	s := NewSession(r.gen, r.opts, r.logger)
	r.mu.Lock()
	r.sessions[s.ID()] = &registryEntry{session: s, lastAccess: time.Now()}
	r.mu.Unlock()
	r.logger.Info("session created", "session", s.ID())
	return s
}

// Get returns the session with the given id, refreshing its idle timer.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "session not found"}
	}
	entry.lastAccess = time.Now()
	return entry.session, nil
}

// Delete removes and closes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return &domain.NotFoundError{Message: "session not found"}
	}
	entry.session.Close()
	r.logger.Info("session deleted", "session", id)
	return nil
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the sweeper and closes every session.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.mu.Lock()
	for id, entry := range r.sessions {
		entry.session.Close()
		delete(r.sessions, id)
	}
	r.mu.Unlock()
}

func (r *Registry) sweepLoop() {
	interval := r.ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

func (r *Registry) sweep(now time.Time) {
	var expired []*Session
	r.mu.Lock()
	for id, entry := range r.sessions {
		if now.Sub(entry.lastAccess) > r.ttl {
			expired = append(expired, entry.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range expired {
		s.Close()
		r.logger.Info("idle session swept", "session", s.ID())
	}
}
