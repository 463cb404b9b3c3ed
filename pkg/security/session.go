package security

import (
	"sync"
	"time"

	"procurement/internal/store"
	"procurement/pkg/models"

	"github.com/google/uuid"
)

// Session lives only in memory; a restart logs everybody out.
type Session struct {
	ID            string
	UserID        string
	Username      string
	UpstreamToken string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	Store         *store.Store
}

// Registry holds open sessions until logout or until their token would have
// expired, whichever comes first.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	go r.cleanupLoop(time.Minute)

	return r
}

func (r *Registry) Open(login models.LoginResult) *Session {
	now := r.now()
	session := &Session{
		ID:            uuid.NewString(),
		UserID:        login.ID,
		Username:      login.Usuario,
		UpstreamToken: login.Token,
		CreatedAt:     now,
		ExpiresAt:     now.Add(r.ttl),
		Store:         store.New(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return session
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !r.now().Before(session.ExpiresAt) {
		r.Close(id)
		return nil, false
	}
	return session, true
}

func (r *Registry) Close(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Stop ends the background eviction of expired sessions.
func (r *Registry) Stop() {
	r.once.Do(func() { close(r.stop) })
}

func (r *Registry) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.evictExpired()
		}
	}
}

func (r *Registry) evictExpired() {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(r.sessions, id)
		}
	}
}
