package app

import (
	"context"
	"encoding/json"

	"github.com/nvoss/codeshare/internal/core"
	"github.com/nvoss/codeshare/internal/domain"
	"github.com/nvoss/codeshare/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Relay wires the connection registry, the room store and the voice
// groups behind the adapter's event vocabulary. Display names resolve
// through the registry before any room or voice lock is taken, so at
// most one scope is locked at a time.
type Relay struct {
	Registry *Registry
	Rooms    *RoomManager
	Voice    *VoiceManager
}

func NewRelay() *Relay {
	return &Relay{
		Registry: NewRegistry(),
		Rooms:    NewRoomManager(),
		Voice:    NewVoiceManager(),
	}
}

// Connect registers a freshly accepted connection.
func (rl *Relay) Connect(id core.ConnID, conn core.SignalConnection, cancel context.CancelFunc) {
	rl.Registry.Bind(id, conn, cancel)
}

// Disconnect runs the full cleanup exactly once: room leave, voice
// leave, registry removal. A connection that never joined anything
// produces no notifications.
func (rl *Relay) Disconnect(id core.ConnID) {
	roomID, _, ok := rl.Registry.Unbind(id)
	if ok && roomID != "" {
		rl.leaveRoom(id, roomID)
	}
	rl.Voice.LeaveCurrent(id)
}

// JoinRoom enters the room, creating it with defaults on first sight.
// Joining while registered elsewhere is a room switch: the old room
// sees a normal leave first.
func (rl *Relay) JoinRoom(id core.ConnID, roomID domain.RoomID, username string) {
	conn, ok := rl.Registry.Conn(id)
	if !ok {
		return
	}
	name := domain.DisplayName(username)

	if prev, _, ok := rl.Registry.Membership(id); ok && prev != roomID {
		rl.leaveRoom(id, prev)
	}
	rl.Registry.SetRoom(id, roomID, name)
	// A room resolved here can be reclaimed before Join takes its lock;
	// Join reports that and a fresh GetOrCreate replaces it.
	for !rl.Rooms.GetOrCreate(roomID).Join(id, name, conn) {
	}
}

// CodeChange overwrites the room buffer. Stale membership claims are
// dropped: the event's room must match the sender's registered room.
func (rl *Relay) CodeChange(id core.ConnID, roomID domain.RoomID, code string) {
	room, ok := rl.memberRoom(id, roomID)
	if !ok {
		return
	}
	room.ApplyCode(id, code)
}

// LanguageChange mirrors CodeChange for the language tag.
func (rl *Relay) LanguageChange(id core.ConnID, roomID domain.RoomID, language string) {
	room, ok := rl.memberRoom(id, roomID)
	if !ok {
		return
	}
	room.ApplyLanguage(id, language)
}

// JoinVoice opts the connection into the room's voice channel and
// answers with the peers to contact.
func (rl *Relay) JoinVoice(id core.ConnID, roomID domain.RoomID) {
	conn, ok := rl.Registry.Conn(id)
	if !ok {
		return
	}
	name := rl.Registry.UsernameOf(id)
	rl.Voice.Join(roomID, id, name, conn)
}

// LeaveVoice opts back out; the remaining group members are told to
// drop their peer link.
func (rl *Relay) LeaveVoice(id core.ConnID, roomID domain.RoomID) {
	rl.Voice.Leave(roomID, id)
}

// SendingSignal forwards a handshake offer to one connection. The
// payload is opaque; the sender id is stamped server-side. A missing
// target just drops the offer, the caller has no ack contract.
func (rl *Relay) SendingSignal(from, to core.ConnID, signal json.RawMessage) {
	conn, ok := rl.Registry.Conn(to)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("to", string(to)).Msg("offer target gone, dropped")
		return
	}
	sendJSON(conn, protocol.VoiceOffer{
		Type:     protocol.EvtUserJoined,
		Signal:   signal,
		CallerID: string(from),
		Username: rl.Registry.UsernameOf(from),
	})
}

// ReturningSignal is the symmetric answer leg back to the caller.
func (rl *Relay) ReturningSignal(from, to core.ConnID, signal json.RawMessage) {
	conn, ok := rl.Registry.Conn(to)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("to", string(to)).Msg("answer target gone, dropped")
		return
	}
	sendJSON(conn, protocol.ReturnedSignal{
		Type:   protocol.EvtReturnedSignal,
		Signal: signal,
		ID:     string(from),
	})
}

// ForwardCandidate trickles one ICE candidate to its target. Called
// many times per peer pair, so nothing here but the target lookup.
func (rl *Relay) ForwardCandidate(from, to core.ConnID, candidate json.RawMessage) {
	conn, ok := rl.Registry.Conn(to)
	if !ok {
		return
	}
	sendJSON(conn, protocol.IceForward{
		Type:      protocol.EvtIceCandidate,
		Candidate: candidate,
		From:      string(from),
	})
}

// memberRoom resolves the room for a mutation event, enforcing the
// claimed room id against the sender's registered one.
func (rl *Relay) memberRoom(id core.ConnID, roomID domain.RoomID) (*Room, bool) {
	current, _, ok := rl.Registry.Membership(id)
	if !ok || current != roomID {
		log.Debug().Str("module", "app.relay").Str("conn", string(id)).
			Str("claimed", string(roomID)).Msg("stale room membership, dropped")
		return nil, false
	}
	return rl.Rooms.Get(roomID)
}

// leaveRoom runs the room half of a leave and reclaims the room when
// it was the last participant out.
func (rl *Relay) leaveRoom(id core.ConnID, roomID domain.RoomID) {
	room, ok := rl.Rooms.Get(roomID)
	if !ok {
		return
	}
	if room.Leave(id) {
		rl.Rooms.Remove(roomID)
	}
}
