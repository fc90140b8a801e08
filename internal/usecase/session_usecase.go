package usecase

import (
	"context"
	"sync"
	"time"

	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/pkg/logger"
	"alumni-prep-backend/pkg/metrics"

	"github.com/google/uuid"
)

// Session is one client's pair of workflows.
type Session struct {
	ID       string
	Signup   *SignupForm
	Practice *PracticeList

	lastSeen time.Time
}

// SessionRegistry keeps sessions in memory and forgets them after idleTTL
// without access. Nothing here is persisted.
type SessionRegistry struct {
	signup  SignupDeps
	recs    domain.RecommendationClient
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(signup SignupDeps, recs domain.RecommendationClient, idleTTL time.Duration) *SessionRegistry {
	return &SessionRegistry{
		signup:   signup,
		recs:     recs,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (r *SessionRegistry) Create() *Session {
	id := uuid.NewString()
	s := &Session{
		ID:       id,
		Signup:   NewSignupForm(id, r.signup),
		Practice: NewPracticeList(r.recs, nil),
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.sessions[id] = s
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	return s
}

// Get returns the session and marks it as used.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

// Sweep drops sessions idle for longer than idleTTL and returns how many.
func (r *SessionRegistry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.Log.Debugw("Expired idle sessions", "count", n)
			}
		}
	}
}
