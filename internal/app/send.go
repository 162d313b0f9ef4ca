package app

import (
	"encoding/json"

	"github.com/nvoss/codeshare/internal/core"
	"github.com/rs/zerolog/log"
)

// sendJSON marshals and fires one event at one connection. Delivery
// is best-effort: a full buffer or a closed connection just drops the
// frame, backpressure is the transport's problem (policy: no retries,
// no acks).
func sendJSON(c core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "app").Msg("sendJSON dropped frame")
	}
}
