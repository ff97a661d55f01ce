package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"RocketShoes/internal/notify"
	"RocketShoes/internal/slot"
)

const DefaultLoadTimeout = 5 * time.Second

// Session is the cart handle handed to everything serving one shopper session.
type Session struct {
	ID    string
	Store *Store
	Inbox *notify.Inbox
}

type RegistryDeps struct {
	Catalog Catalog
	Backend slot.Backend
	Log     *zap.Logger
	Metrics *Metrics

	// Notifier, when set, receives every session's notifications in
	// addition to the session inbox and the log.
	Notifier func(sessionID string) Notifier

	InboxSize   int
	LoadTimeout time.Duration
}

// Registry scopes one Store per session. Stores are created on first use and
// initialized from the session's slot. A session whose slot could not be read
// is not kept, so the next request tries again.
type Registry struct {
	deps RegistryDeps

	opening singleflight.Group

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(deps RegistryDeps) *Registry {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.LoadTimeout <= 0 {
		deps.LoadTimeout = DefaultLoadTimeout
	}
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Session(ctx context.Context, sessionID string) (*Session, error) {
	if s, ok := r.lookup(sessionID); ok {
		return s, nil
	}

	v, err, _ := r.opening.Do(sessionID, func() (any, error) {
		if s, ok := r.lookup(sessionID); ok {
			return s, nil
		}

		s, err := r.open(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.sessions[sessionID] = s
		n := len(r.sessions)
		r.mu.Unlock()

		r.deps.Metrics.setSessions(n)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *Registry) lookup(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// open loads the session's cart. The load outlives the request that triggered
// it: concurrent callers share its result.
func (r *Registry) open(ctx context.Context, sessionID string) (*Session, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.deps.LoadTimeout)
	defer cancel()

	log := r.deps.Log.With(zap.String("session_id", sessionID))
	inbox := notify.NewInbox(sessionID, r.deps.InboxSize)

	fanout := notify.Multi{inbox, notify.NewLog(log, sessionID)}
	if r.deps.Notifier != nil {
		fanout = append(fanout, r.deps.Notifier(sessionID))
	}

	store, err := NewStore(ctx, Deps{
		Catalog:  r.deps.Catalog,
		Notifier: fanout,
		Slot:     slot.New(r.deps.Backend, slot.SessionKey(sessionID)),
		Log:      log,
		Metrics:  r.deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", sessionID, err)
	}

	return &Session{ID: sessionID, Store: store, Inbox: inbox}, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.deps.Backend.Ping(ctx)
}
