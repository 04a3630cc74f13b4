package session

import (
	"context"
	"errors"
	"time"

	"nocturne/src/nerrors"
)

// Store persists sessions keyed by session ID. Implementations must return
// nerrors.ErrSessionNotFound for missing IDs.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Registry is the host-owned session table: one entry per user key, no
// cross-session sharing. It wraps a Store with get-or-create semantics and
// tier progression.
type Registry struct {
	store      Store
	personaID  string
	thresholds Thresholds
}

// NewRegistry creates a registry over a store.
func NewRegistry(store Store, personaID string, th Thresholds) *Registry {
	if th.EstablishedAfter <= 0 {
		th = DefaultThresholds()
	}
	return &Registry{store: store, personaID: personaID, thresholds: th}
}

// GetOrCreate returns the session for id, creating and persisting a fresh
// one only when none exists. An empty id always creates a new session; any
// store failure other than not-found is returned so an established session
// is never silently replaced.
func (r *Registry) GetOrCreate(ctx context.Context, id string, now time.Time) (*Session, error) {
	if id != "" {
		s, err := r.store.Get(ctx, id)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, nerrors.ErrSessionNotFound) {
			return nil, err
		}
	}
	s := New(id, r.personaID, now)
	if err := r.store.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Touch advances the session by one interaction and persists it.
func (r *Registry) Touch(ctx context.Context, s *Session, now time.Time) error {
	s.Touch(now, r.thresholds)
	return r.store.Put(ctx, s)
}

// Save persists the session without advancing it (context/state changes).
func (r *Registry) Save(ctx context.Context, s *Session) error {
	return r.store.Put(ctx, s)
}

// Drop removes a session.
func (r *Registry) Drop(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

// Close releases the underlying store.
func (r *Registry) Close() error {
	return r.store.Close()
}
