package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nvoss/codeshare/internal/core"
	"github.com/nvoss/codeshare/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump owns all reads and, on exit for any reason, runs the full
// disconnect cleanup exactly once.
func (ctl *Controller) readPump(ctx context.Context, id core.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "ws").Str("conn", string(id)).Msg("connection closing")
		ctl.Relay.Disconnect(id)
		ctl.Limiter.Forget(id)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("readPump read error")
				}
				return
			}
			ctl.dispatch(id, data)
		}
	}
}

// dispatch routes one inbound frame. Anything malformed is dropped
// with a log line; the transport is fire-and-forget and has no error
// channel back to the sender.
func (ctl *Controller) dispatch(id core.ConnID, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("bad json")
		return
	}

	switch env.Type {
	case protocol.EvtJoinRoom:
		ctl.handleJoinRoom(id, data)
	case protocol.EvtCodeChange:
		ctl.handleCodeChange(id, data)
	case protocol.EvtLanguageChange:
		ctl.handleLanguageChange(id, data)
	case protocol.EvtJoinVoiceRoom:
		ctl.handleJoinVoice(id, data)
	case protocol.EvtSendingSignal:
		ctl.handleSendingSignal(id, data)
	case protocol.EvtReturningSignal:
		ctl.handleReturningSignal(id, data)
	case protocol.EvtIceCandidate:
		ctl.handleIceCandidate(id, data)
	case protocol.EvtLeaveVoiceRoom:
		ctl.handleLeaveVoice(id, data)
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event")
	}
}
