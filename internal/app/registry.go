package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/verock/streamcast/internal/core"
	"github.com/verock/streamcast/internal/domain"
)

type sessionEntry struct {
	Conn   core.Conn
	Cancel context.CancelFunc
	Rooms  map[domain.RoomKey]struct{}
}

// Registry tracks every live connection: its transport endpoint, the
// cancel func for its connection-scoped context, and the set of rooms
// it has joined.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ClientID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.ClientID]*sessionEntry)}
}

func (r *Registry) Bind(id domain.ClientID, conn core.Conn, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionEntry{
		Conn:   conn,
		Cancel: cancel,
		Rooms:  make(map[domain.RoomKey]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("client", string(id)).Int("clients", len(r.sessions)).Msg("bound session")
}

func (r *Registry) Conn(id domain.ClientID) (core.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (r *Registry) AddRoom(id domain.ClientID, key domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.Rooms[key] = struct{}{}
	}
}

func (r *Registry) RemoveRoom(id domain.ClientID, key domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		delete(e.Rooms, key)
	}
}

// RoomsOf returns the rooms the client is currently joined to.
func (r *Registry) RoomsOf(id domain.ClientID) []domain.RoomKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil
	}
	out := make([]domain.RoomKey, 0, len(e.Rooms))
	for key := range e.Rooms {
		out = append(out, key)
	}
	return out
}

// Unbind cancels the session context and forgets the session. Returns
// false if the session was already gone.
func (r *Registry) Unbind(id domain.ClientID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("client", string(id)).Int("clients", len(r.sessions)).Msg("unbound session")
	return true
}

// Count is the live connection total, observable for operational
// visibility only.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
