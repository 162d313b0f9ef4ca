package app

import (
	"sync"

	"github.com/nvoss/codeshare/internal/core"
	"github.com/nvoss/codeshare/internal/domain"
	"github.com/nvoss/codeshare/internal/protocol"
	"github.com/rs/zerolog/log"
)

type member struct {
	name string
	conn core.SignalConnection
}

// Room is one live editing session. Its mutex covers every
// read-modify-write together with the notifications it produces, so
// operations on the same room never interleave their state access or
// their outbound fan-out. Sends under the lock are fine because
// TrySend only enqueues, it never blocks on I/O.
type Room struct {
	mu      sync.Mutex
	doc     *domain.Room
	members map[core.ConnID]member
	order   []core.ConnID
	dead    bool
}

func newRoom(id domain.RoomID) *Room {
	return &Room{
		doc:     domain.NewRoom(id),
		members: make(map[core.ConnID]member),
	}
}

// roster is the wire participant list: display names in join order,
// deduplicated. Two same-named connections collapse to one entry.
// Callers hold r.mu.
func (r *Room) roster() []string {
	seen := make(map[string]bool, len(r.order))
	users := make([]string, 0, len(r.order))
	for _, id := range r.order {
		name := r.members[id].name
		if seen[name] {
			continue
		}
		seen[name] = true
		users = append(users, name)
	}
	return users
}

// hasName reports whether any member still carries the display name.
// Callers hold r.mu.
func (r *Room) hasName(name string) bool {
	for _, m := range r.members {
		if m.name == name {
			return true
		}
	}
	return false
}

// Join adds the connection and runs the three-step notification in
// order: snapshot to the joiner (post-join, so the joiner sees
// themselves), user-joined to the others, full roster to everyone.
// Returns false when the room was reclaimed after the caller resolved
// it; the caller must fetch a fresh room and retry.
func (r *Room) Join(id core.ConnID, name string, conn core.SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dead {
		return false
	}
	if _, ok := r.members[id]; !ok {
		r.order = append(r.order, id)
	}
	r.members[id] = member{name: name, conn: conn}

	users := r.roster()
	sendJSON(conn, protocol.RoomState{
		Type:     protocol.EvtRoomState,
		Code:     r.doc.Code,
		Language: r.doc.Language,
		Users:    users,
	})

	joined := protocol.UserJoined{Type: protocol.EvtUserJoined, Username: name}
	for mid, m := range r.members {
		if mid == id {
			continue
		}
		sendJSON(m.conn, joined)
	}

	update := protocol.ParticipantsUpdate{Type: protocol.EvtParticipantsUpdate, Users: users}
	for _, m := range r.members {
		sendJSON(m.conn, update)
	}

	log.Info().Str("module", "app.rooms").Str("room", string(r.doc.ID)).
		Str("conn", string(id)).Str("username", name).Int("members", len(r.members)).Msg("member joined")
	return true
}

// ApplyCode overwrites the buffer and relays it to the other members.
// Last writer wins; the sender is never echoed its own change.
func (r *Room) ApplyCode(from core.ConnID, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[from]; !ok {
		return
	}
	r.doc.Code = code
	out := protocol.CodeUpdate{Type: protocol.EvtCodeChange, Code: code}
	for mid, m := range r.members {
		if mid == from {
			continue
		}
		sendJSON(m.conn, out)
	}
}

// ApplyLanguage mirrors ApplyCode for the language tag.
func (r *Room) ApplyLanguage(from core.ConnID, language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[from]; !ok {
		return
	}
	r.doc.Language = language
	out := protocol.LanguageUpdate{Type: protocol.EvtLanguageChange, Language: language}
	for mid, m := range r.members {
		if mid == from {
			continue
		}
		sendJSON(m.conn, out)
	}
}

// Leave removes the connection and notifies the remainder. user-left
// fires only when no other connection still carries the display name,
// so a shared name survives until its last connection is gone.
// Returns true when the room is now empty and may be reclaimed.
func (r *Room) Leave(id core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return len(r.members) == 0
	}
	delete(r.members, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if !r.hasName(m.name) {
		left := protocol.UserLeft{Type: protocol.EvtUserLeft, Username: m.name}
		for _, rest := range r.members {
			sendJSON(rest.conn, left)
		}
	}
	update := protocol.ParticipantsUpdate{Type: protocol.EvtParticipantsUpdate, Users: r.roster()}
	for _, rest := range r.members {
		sendJSON(rest.conn, update)
	}

	log.Info().Str("module", "app.rooms").Str("room", string(r.doc.ID)).
		Str("conn", string(id)).Int("members", len(r.members)).Msg("member left")
	return len(r.members) == 0
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Participants returns the current wire roster.
func (r *Room) Participants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roster()
}

// Document returns a copy of the shared document state.
func (r *Room) Document() domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.doc
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	ID           domain.RoomID `json:"roomId"`
	Participants []string      `json:"participants"`
}

// RoomManager is the room store: rooms are created lazily on first
// join and reclaimed (optionally) once empty. An empty-but-retained
// room keeps its buffer and answers a fresh join with it.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*Room
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.RoomID]*Room)}
}

func (f *RoomManager) GetOrCreate(id domain.RoomID) *Room {
	f.mu.RLock()
	room, ok := f.rooms[id]
	f.mu.RUnlock()
	if ok {
		return room
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[id]; ok {
		return room
	}
	room = newRoom(id)
	f.rooms[id] = room
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	return room
}

func (f *RoomManager) Get(id domain.RoomID) (*Room, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	return room, ok
}

func (f *RoomManager) List() []RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		out = append(out, RoomInfo{ID: id, Participants: r.Participants()})
	}
	return out
}

// Remove drops the room if it is still empty. The room is marked dead
// under its own mutex while the store lock is held, so a join that
// resolved the pointer before the delete cannot land on it: Join sees
// the mark, fails, and the caller retries against the store.
func (f *RoomManager) Remove(id domain.RoomID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return
	}
	room.mu.Lock()
	if len(room.members) > 0 {
		room.mu.Unlock()
		return
	}
	room.dead = true
	room.mu.Unlock()
	delete(f.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room reclaimed")
}
