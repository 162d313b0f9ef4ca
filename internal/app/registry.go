package app

import (
	"context"
	"sync"

	"github.com/nvoss/codeshare/internal/core"
	"github.com/nvoss/codeshare/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Username string
	RoomID   domain.RoomID
	Conn     core.SignalConnection
	Cancel   context.CancelFunc
}

// Registry owns the connection -> room/name association and is the
// only place display names resolve from. One lock for the whole map;
// it is never held while a room or voice-group lock is taken.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]*connEntry)}
}

// Bind records a freshly accepted connection. No room side effects.
func (r *Registry) Bind(id core.ConnID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

// SetRoom records where the connection is and under which name.
// Calling it again with a different room is a room switch; the relay
// runs the leave on the old room first.
func (r *Registry) SetRoom(id core.ConnID, roomID domain.RoomID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[id]
	if !ok {
		return
	}
	entry.RoomID = roomID
	entry.Username = username
	log.Info().Str("module", "app.registry").Str("conn", string(id)).
		Str("room", string(roomID)).Str("username", username).Msg("joined room")
}

// Unbind removes the connection and returns its last association.
// It also cancels the connection context so the write pump stops.
// Safe to call for an id that never joined a room (ok, empty room id).
func (r *Registry) Unbind(id core.ConnID) (domain.RoomID, string, bool) {
	r.mu.Lock()
	entry, ok := r.conns[id]
	delete(r.conns, id)
	r.mu.Unlock()
	if !ok {
		return "", "", false
	}
	if entry.Cancel != nil {
		entry.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbound connection")
	return entry.RoomID, entry.Username, true
}

// Membership returns the room and display name the connection is
// registered under. ok is false when the connection never joined.
func (r *Registry) Membership(id core.ConnID) (domain.RoomID, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[id]
	if !ok || entry.RoomID == "" {
		return "", "", false
	}
	return entry.RoomID, entry.Username, true
}

// UsernameOf resolves a display name for UI presentation. Unknown
// connections and unset names both read as Anonymous.
func (r *Registry) UsernameOf(id core.ConnID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.conns[id]; ok && entry.Username != "" {
		return entry.Username
	}
	return domain.AnonymousName
}

// Conn looks up the transport endpoint for a signaling forward.
func (r *Registry) Conn(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return entry.Conn, true
}
