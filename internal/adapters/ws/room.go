package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/nvoss/codeshare/internal/core"
	"github.com/nvoss/codeshare/internal/domain"
	"github.com/nvoss/codeshare/internal/protocol"
)

func (ctl *Controller) handleJoinRoom(id core.ConnID, data []byte) {
	var p protocol.JoinRoom
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad join-room payload")
		return
	}
	if p.RoomID == "" {
		log.Debug().Str("module", "ws").Str("conn", string(id)).Msg("join-room without roomId, dropped")
		return
	}
	if !ctl.Limiter.Allow(id) {
		log.Warn().Str("module", "ws").Str("conn", string(id)).Msg("join-room rate limited")
		return
	}
	ctl.Relay.JoinRoom(id, domain.RoomID(p.RoomID), p.Username)
}

func (ctl *Controller) handleCodeChange(id core.ConnID, data []byte) {
	var p protocol.CodeChange
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad code-change payload")
		return
	}
	if p.RoomID == "" || p.Code == nil {
		log.Debug().Str("module", "ws").Str("conn", string(id)).Msg("incomplete code-change, dropped")
		return
	}
	ctl.Relay.CodeChange(id, domain.RoomID(p.RoomID), *p.Code)
}

func (ctl *Controller) handleLanguageChange(id core.ConnID, data []byte) {
	var p protocol.LanguageChange
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad language-change payload")
		return
	}
	if p.RoomID == "" || p.Language == nil {
		log.Debug().Str("module", "ws").Str("conn", string(id)).Msg("incomplete language-change, dropped")
		return
	}
	ctl.Relay.LanguageChange(id, domain.RoomID(p.RoomID), *p.Language)
}
