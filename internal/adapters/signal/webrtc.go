package signal

import (
	"context"
	"encoding/json"

	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/domain"
)

// handleSignal relays offer/answer/ICE envelopes between peers. The
// engine never opens the payload; media negotiation is entirely
// client-to-client.
func (ctl *Controller) handleSignal(ctx context.Context, actor app.Actor, c *WsConn, event string, data []byte) {
	type payload struct {
		Target  domain.ConnID   `json:"targetConnectionId"`
		Payload json.RawMessage `json:"payload"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		ctl.sendError(c, domain.ErrInvalidPayload)
		return
	}
	_ = ctl.Engine.Relay(ctx, actor, event, p.Target, p.Payload)
}
