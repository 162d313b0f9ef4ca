package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/nvoss/codeshare/internal/core"
	"github.com/nvoss/codeshare/internal/domain"
	"github.com/nvoss/codeshare/internal/protocol"
)

func (ctl *Controller) handleJoinVoice(id core.ConnID, data []byte) {
	var p protocol.JoinVoiceRoom
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad join-voice-room payload")
		return
	}
	if p.RoomID == "" {
		log.Debug().Str("module", "ws").Str("conn", string(id)).Msg("join-voice-room without roomId, dropped")
		return
	}
	if !ctl.Limiter.Allow(id) {
		log.Warn().Str("module", "ws").Str("conn", string(id)).Msg("join-voice-room rate limited")
		return
	}
	ctl.Relay.JoinVoice(id, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleLeaveVoice(id core.ConnID, data []byte) {
	var p protocol.LeaveVoiceRoom
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad leave-voice-room payload")
		return
	}
	if p.RoomID == "" {
		return
	}
	ctl.Relay.LeaveVoice(id, domain.RoomID(p.RoomID))
}

// handleSendingSignal forwards an offer. The client-supplied callerID
// is ignored: the server knows who is talking.
func (ctl *Controller) handleSendingSignal(id core.ConnID, data []byte) {
	var p protocol.SendingSignal
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad sending-signal payload")
		return
	}
	if p.UserToSignal == "" || len(p.Signal) == 0 {
		log.Debug().Str("module", "ws").Str("conn", string(id)).Msg("incomplete sending-signal, dropped")
		return
	}
	ctl.Relay.SendingSignal(id, core.ConnID(p.UserToSignal), p.Signal)
}

func (ctl *Controller) handleReturningSignal(id core.ConnID, data []byte) {
	var p protocol.ReturningSignal
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad returning-signal payload")
		return
	}
	if p.CallerID == "" || len(p.Signal) == 0 {
		log.Debug().Str("module", "ws").Str("conn", string(id)).Msg("incomplete returning-signal, dropped")
		return
	}
	ctl.Relay.ReturningSignal(id, core.ConnID(p.CallerID), p.Signal)
}

func (ctl *Controller) handleIceCandidate(id core.ConnID, data []byte) {
	var p protocol.IceCandidate
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad ice-candidate payload")
		return
	}
	if p.Target == "" || len(p.Candidate) == 0 {
		return
	}
	ctl.Relay.ForwardCandidate(id, core.ConnID(p.Target), p.Candidate)
}
