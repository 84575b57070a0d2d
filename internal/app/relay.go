package app

import (
	"github.com/Parth0603/backendServer/internal/core"
	"github.com/rs/zerolog/log"
)

// handleRelay forwards one signaling message to its target connection.
// The payload stays opaque: offers, answers and ICE candidates are peer
// business, the engine only addresses them. No room context is checked.
// A vanished target is dropped; the peer connection detects the failure
// on its own.
func (c *Coordinator) handleRelay(m cmdRelay) {
	target, ok := c.conns[m.Target]
	if !ok {
		log.Debug().Str("module", "app.relay").Str("event", m.Event).Str("target", string(m.Target)).Msg("relay target gone")
		return
	}
	f, err := core.Encode(m.Event, SignalPayload{From: m.Actor.Conn, Payload: m.Payload})
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", m.Event).Msg("encode failed")
		return
	}
	if err := target.sender.TrySend(f); err != nil {
		log.Warn().Str("module", "app.relay").Str("event", m.Event).Str("target", string(m.Target)).Msg("relay frame dropped")
	}
}
