package app

import (
	"sync"

	"github.com/nvoss/codeshare/internal/core"
	"github.com/nvoss/codeshare/internal/domain"
	"github.com/nvoss/codeshare/internal/protocol"
	"github.com/rs/zerolog/log"
)

type voicePeer struct {
	name string
	conn core.SignalConnection
}

// VoiceManager tracks which connections opted into a room's voice
// channel. Membership is keyed by connection id, not display name:
// names are not unique and a handshake must land on one specific
// transport connection. One lock guards all groups, so a membership
// snapshot can never be taken while a join or leave for the same
// group is in flight.
type VoiceManager struct {
	mu     sync.Mutex
	groups map[domain.RoomID]map[core.ConnID]voicePeer
	joined map[core.ConnID]domain.RoomID
}

func NewVoiceManager() *VoiceManager {
	return &VoiceManager{
		groups: make(map[domain.RoomID]map[core.ConnID]voicePeer),
		joined: make(map[core.ConnID]domain.RoomID),
	}
}

// Join adds the connection to the voice group and replies, to the
// joiner only, with the other current members. Existing members learn
// about the newcomer through the newcomer's own offers, not here.
func (v *VoiceManager) Join(roomID domain.RoomID, id core.ConnID, name string, conn core.SignalConnection) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if prev, ok := v.joined[id]; ok && prev != roomID {
		v.leaveLocked(prev, id)
	}

	group, ok := v.groups[roomID]
	if !ok {
		group = make(map[core.ConnID]voicePeer)
		v.groups[roomID] = group
	}

	peers := make([]protocol.VoicePeer, 0, len(group))
	for pid, p := range group {
		if pid == id {
			continue
		}
		peers = append(peers, protocol.VoicePeer{ID: string(pid), Username: p.name})
	}

	group[id] = voicePeer{name: name, conn: conn}
	v.joined[id] = roomID

	sendJSON(conn, protocol.AllUsers{Type: protocol.EvtAllUsers, Users: peers})
	log.Info().Str("module", "app.voice").Str("room", string(roomID)).
		Str("conn", string(id)).Int("peers", len(peers)).Msg("joined voice group")
}

// Leave removes the connection from the named group. A mismatched or
// unknown room id is a silent no-op.
func (v *VoiceManager) Leave(roomID domain.RoomID, id core.ConnID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.joined[id] != roomID {
		return
	}
	v.leaveLocked(roomID, id)
}

// LeaveCurrent is the implicit leave on disconnect. A connection that
// never joined a voice group produces no notification.
func (v *VoiceManager) LeaveCurrent(id core.ConnID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if roomID, ok := v.joined[id]; ok {
		v.leaveLocked(roomID, id)
	}
}

// Members lists the current group membership ids.
func (v *VoiceManager) Members(roomID domain.RoomID) []core.ConnID {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]core.ConnID, 0, len(v.groups[roomID]))
	for id := range v.groups[roomID] {
		out = append(out, id)
	}
	return out
}

// leaveLocked removes the peer and notifies the remainder so they can
// tear down the corresponding peer link. Callers hold v.mu.
func (v *VoiceManager) leaveLocked(roomID domain.RoomID, id core.ConnID) {
	group, ok := v.groups[roomID]
	if !ok {
		return
	}
	peer, ok := group[id]
	if !ok {
		return
	}
	delete(group, id)
	delete(v.joined, id)
	if len(group) == 0 {
		delete(v.groups, roomID)
	} else {
		left := protocol.UserLeftVoice{Type: protocol.EvtUserLeftVoice, ID: string(id), Username: peer.name}
		for _, rest := range group {
			sendJSON(rest.conn, left)
		}
	}
	log.Info().Str("module", "app.voice").Str("room", string(roomID)).
		Str("conn", string(id)).Msg("left voice group")
}
