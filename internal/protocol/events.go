// Package protocol is the wire vocabulary shared by the websocket
// adapter and the relay. Every message is flat JSON with a "type"
// discriminator. Signaling payloads stay json.RawMessage end to end:
// the server never looks inside an offer, answer or candidate.
package protocol

import "encoding/json"

// Client -> server event types.
const (
	EvtJoinRoom        = "join-room"
	EvtCodeChange      = "code-change"
	EvtLanguageChange  = "language-change"
	EvtJoinVoiceRoom   = "join-voice-room"
	EvtSendingSignal   = "sending-signal"
	EvtReturningSignal = "returning-signal"
	EvtIceCandidate    = "ice-candidate"
	EvtLeaveVoiceRoom  = "leave-voice-room"
)

// Server -> client event types. user-joined, code-change,
// language-change and ice-candidate appear in both directions.
const (
	EvtRoomState          = "room-state"
	EvtUserJoined         = "user-joined"
	EvtUserLeft           = "user-left"
	EvtParticipantsUpdate = "participants-update"
	EvtAllUsers           = "all-users"
	EvtReturnedSignal     = "receiving-returned-signal"
	EvtUserLeftVoice      = "user-left-voice"
)

// Envelope carries just enough to dispatch an inbound message.
type Envelope struct {
	Type string `json:"type"`
}

// JoinRoom enters (or creates) an editing room.
type JoinRoom struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// CodeChange overwrites the room buffer. Code is a pointer so that a
// message missing the field is distinguishable from an empty buffer;
// the former is malformed and dropped.
type CodeChange struct {
	Type   string  `json:"type"`
	RoomID string  `json:"roomId"`
	Code   *string `json:"code"`
}

// LanguageChange overwrites the room language tag.
type LanguageChange struct {
	Type     string  `json:"type"`
	RoomID   string  `json:"roomId"`
	Language *string `json:"language"`
}

// JoinVoiceRoom opts the connection into a room's voice channel.
type JoinVoiceRoom struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// LeaveVoiceRoom opts back out without dropping the connection.
type LeaveVoiceRoom struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// SendingSignal carries a handshake offer to one specific peer.
// CallerID is what the client believes its own id is; the server
// stamps the real one and ignores this field.
type SendingSignal struct {
	Type         string          `json:"type"`
	UserToSignal string          `json:"userToSignal"`
	CallerID     string          `json:"callerID"`
	Signal       json.RawMessage `json:"signal"`
}

// ReturningSignal is the answer leg back to the original caller.
type ReturningSignal struct {
	Type     string          `json:"type"`
	CallerID string          `json:"callerID"`
	Signal   json.RawMessage `json:"signal"`
}

// IceCandidate trickles one candidate to a target connection.
type IceCandidate struct {
	Type      string          `json:"type"`
	Target    string          `json:"target"`
	Candidate json.RawMessage `json:"candidate"`
}

// RoomState is the snapshot a joiner receives, taken after the join
// so the joiner sees themselves in Users.
type RoomState struct {
	Type     string   `json:"type"`
	Code     string   `json:"code"`
	Language string   `json:"language"`
	Users    []string `json:"users"`
}

// UserJoined tells existing members someone entered the room.
type UserJoined struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// UserLeft tells remaining members a display name is gone.
type UserLeft struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// ParticipantsUpdate rebroadcasts the full roster so peer UIs resync
// without trusting incremental add/remove events alone.
type ParticipantsUpdate struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// CodeUpdate relays a buffer overwrite to the other members.
type CodeUpdate struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// LanguageUpdate relays a language switch to the other members.
type LanguageUpdate struct {
	Type     string `json:"type"`
	Language string `json:"language"`
}

// VoicePeer names one voice-group member for the joiner's contact list.
type VoicePeer struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AllUsers answers a voice join with the other current members.
type AllUsers struct {
	Type  string      `json:"type"`
	Users []VoicePeer `json:"users"`
}

// VoiceOffer delivers a handshake offer. The event type on the wire
// is user-joined: a voice peer first learns about a newcomer through
// the newcomer's own offer.
type VoiceOffer struct {
	Type     string          `json:"type"`
	Signal   json.RawMessage `json:"signal"`
	CallerID string          `json:"callerID"`
	Username string          `json:"username"`
}

// ReturnedSignal delivers the answer back to the caller; ID is the
// connection that answered.
type ReturnedSignal struct {
	Type   string          `json:"type"`
	Signal json.RawMessage `json:"signal"`
	ID     string          `json:"id"`
}

// IceForward delivers a trickled candidate, tagged with the sender.
type IceForward struct {
	Type      string          `json:"type"`
	Candidate json.RawMessage `json:"candidate"`
	From      string          `json:"from"`
}

// UserLeftVoice tells a voice group to tear down one peer link.
type UserLeftVoice struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Username string `json:"username"`
}
